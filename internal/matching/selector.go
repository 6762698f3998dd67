// Package matching holds the candidate selector and the mutual-match
// resolver as pure functions over snapshots, so both are testable without a
// database.
package matching

import (
	"context"
	"errors"

	"friendly/internal/models"
)

// ErrNoZipcode is returned when the requesting user has no zip code, before
// the proximity collaborator is ever consulted.
var ErrNoZipcode = errors.New("user has no zip code")

// ZipProximity maps (radius, zipcode) to the set of nearby zip codes. It is
// an injected collaborator; precision and distance units are its concern,
// not the selector's.
type ZipProximity interface {
	Nearby(ctx context.Context, radius int, zipcode string) (map[string]struct{}, error)
}

// EligibleZipcodes computes the zip-code set a user's candidates may live
// in: the proximity result unioned with the user's own zip. An empty
// proximity result therefore reduces the pool to same-zip users.
func EligibleZipcodes(ctx context.Context, prox ZipProximity, user *models.User) (map[string]struct{}, error) {
	if user.Zipcode == "" {
		return nil, ErrNoZipcode
	}
	eligible, err := prox.Nearby(ctx, user.FriendRadius, user.Zipcode)
	if err != nil {
		return nil, err
	}
	if eligible == nil {
		eligible = make(map[string]struct{}, 1)
	}
	eligible[user.Zipcode] = struct{}{}
	return eligible, nil
}

// Candidates returns every user from the population whose zip code is in
// the eligible set, excluding the requesting user. Ordering follows the
// population; callers cap the result as a policy choice.
func Candidates(username string, population []models.User, eligible map[string]struct{}) []models.User {
	var out []models.User
	for _, u := range population {
		if u.Username == username {
			continue
		}
		if _, ok := eligible[u.Zipcode]; ok {
			out = append(out, u)
		}
	}
	return out
}
