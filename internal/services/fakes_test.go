package services

import (
	"context"
	"io"
	"time"

	"gorm.io/gorm"

	"friendly/internal/apptypes"
	"friendly/internal/models"
)

// In-memory fakes for the storage and infrastructure interfaces the
// services depend on.

type memUserRepo struct {
	users map[string]*models.User
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	r := &memUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.Username] = u
	}
	return r
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.users[user.Username] = user
	return nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := r.users[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) Update(ctx context.Context, user *models.User) error {
	r.users[user.Username] = user
	return nil
}

func (r *memUserRepo) ListByZipcodes(ctx context.Context, zipcodes []string, excludeUsername string) ([]models.User, error) {
	zips := make(map[string]struct{}, len(zipcodes))
	for _, z := range zipcodes {
		zips[z] = struct{}{}
	}
	var out []models.User
	for _, u := range r.users {
		if u.Username == excludeUsername {
			continue
		}
		if _, ok := zips[u.Zipcode]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) GetManyByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	var out []models.User
	for _, name := range usernames {
		if u, ok := r.users[name]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

type memInterestRepo struct {
	records []models.Interest
}

func (r *memInterestRepo) key(from, to string) int {
	for i := range r.records {
		if r.records[i].UserMatching == from && r.records[i].UserBeingMatched == to {
			return i
		}
	}
	return -1
}

func (r *memInterestRepo) Upsert(ctx context.Context, interest *models.Interest) (bool, error) {
	if r.key(interest.UserMatching, interest.UserBeingMatched) >= 0 {
		return false, nil
	}
	r.records = append(r.records, *interest)
	return true, nil
}

func (r *memInterestRepo) GetPair(ctx context.Context, from, to string) (*models.Interest, error) {
	if i := r.key(from, to); i >= 0 {
		rec := r.records[i]
		return &rec, nil
	}
	return nil, nil
}

func (r *memInterestRepo) ListInvolving(ctx context.Context, username string) ([]models.Interest, error) {
	var out []models.Interest
	for _, rec := range r.records {
		if rec.UserMatching == username || rec.UserBeingMatched == username {
			out = append(out, rec)
		}
	}
	return out, nil
}

type memNotificationRepo struct {
	rows []models.Notification
}

func (r *memNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	r.rows = append(r.rows, *n)
	return nil
}

func (r *memNotificationRepo) ListForUser(ctx context.Context, username string, limit int) ([]models.Notification, error) {
	var out []models.Notification
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].Username == username {
			out = append(out, r.rows[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memNotificationRepo) MarkRead(ctx context.Context, username string, id uint) error {
	for i := range r.rows {
		if r.rows[i].ID == id && r.rows[i].Username == username {
			r.rows[i].Read = true
		}
	}
	return nil
}

type memProducer struct {
	topics   []string
	payloads [][]byte
	err      error
}

func (p *memProducer) SendMessage(ctx context.Context, topic string, key []byte, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *memProducer) Close() {}

// staticProximity returns the same zip set for every query.
type staticProximity map[string]struct{}

func (p staticProximity) Nearby(ctx context.Context, radius int, zipcode string) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(p))
	for z := range p {
		out[z] = struct{}{}
	}
	return out, nil
}

type memBlacklist struct {
	revoked map[string]time.Time
}

func newMemBlacklist() *memBlacklist {
	return &memBlacklist{revoked: make(map[string]time.Time)}
}

func (b *memBlacklist) Add(ctx context.Context, jti string, exp time.Time) error {
	b.revoked[jti] = exp
	return nil
}

func (b *memBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	_, ok := b.revoked[jti]
	return ok, nil
}

type memCSRFStore struct {
	tokens map[string]string
}

func newMemCSRFStore() *memCSRFStore {
	return &memCSRFStore{tokens: make(map[string]string)}
}

func (s *memCSRFStore) Issue(ctx context.Context, username string, ttl time.Duration) (string, error) {
	token := "csrf-" + username
	s.tokens[username] = token
	return token, nil
}

func (s *memCSRFStore) Check(ctx context.Context, username, token string) (bool, error) {
	return token != "" && s.tokens[username] == token, nil
}

type memFileStore struct {
	uploads int
	err     error
}

func (s *memFileStore) UploadFile(ctx context.Context, reader io.Reader, fileSize int64, owner, fileName, mimeType string) (*apptypes.FileInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.uploads++
	return &apptypes.FileInfo{
		URL:      "/static/uploads/" + owner + "-photo.png",
		Path:     "/tmp/" + owner + "-photo.png",
		Size:     fileSize,
		MimeType: mimeType,
		FileName: fileName,
	}, nil
}
