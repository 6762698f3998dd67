package matching

import "friendly/internal/models"

// PairState is the combined state of an unordered pair derived from a
// snapshot of interest records.
type PairState string

const (
	// PairUnresolved: neither side has recorded anything.
	PairUnresolved PairState = "unresolved"
	// PairPending: one side positive, the other side silent.
	PairPending PairState = "pending"
	// PairMatched: both sides positive.
	PairMatched PairState = "matched"
	// PairDeclined: either side negative, regardless of the other side.
	PairDeclined PairState = "declined"
)

// PotentialMatches returns the usernames that should appear in username's
// potential-match feed: everyone who recorded positive interest in username,
// minus everyone username has already responded to in either direction.
// Duplicate records have no effect (set semantics).
func PotentialMatches(username string, interests []models.Interest) map[string]struct{} {
	positiveIn := make(map[string]struct{})
	alreadyResolved := make(map[string]struct{})
	for _, i := range interests {
		if i.UserBeingMatched == username && i.Interest {
			positiveIn[i.UserMatching] = struct{}{}
		}
		if i.UserMatching == username {
			alreadyResolved[i.UserBeingMatched] = struct{}{}
		}
	}
	for name := range alreadyResolved {
		delete(positiveIn, name)
	}
	return positiveIn
}

// ConfirmedMatches returns the usernames with whom username has a confirmed
// bidirectional match: the intersection of outgoing-positive targets and
// incoming-positive sources. Duplicate records have no effect.
func ConfirmedMatches(username string, interests []models.Interest) map[string]struct{} {
	outgoing := make(map[string]struct{})
	incoming := make(map[string]struct{})
	for _, i := range interests {
		if !i.Interest {
			continue
		}
		if i.UserMatching == username {
			outgoing[i.UserBeingMatched] = struct{}{}
		}
		if i.UserBeingMatched == username {
			incoming[i.UserMatching] = struct{}{}
		}
	}
	confirmed := make(map[string]struct{})
	for name := range outgoing {
		if _, ok := incoming[name]; ok {
			confirmed[name] = struct{}{}
		}
	}
	return confirmed
}

// StateOf derives the combined state of the pair {a, b} from a snapshot.
// Transitions are one-way: a recorded direction is never flipped, so a
// declined pair stays declined.
func StateOf(a, b string, interests []models.Interest) PairState {
	var aPositive, aNegative, bPositive, bNegative bool
	for _, i := range interests {
		switch {
		case i.UserMatching == a && i.UserBeingMatched == b:
			if i.Interest {
				aPositive = true
			} else {
				aNegative = true
			}
		case i.UserMatching == b && i.UserBeingMatched == a:
			if i.Interest {
				bPositive = true
			} else {
				bNegative = true
			}
		}
	}
	switch {
	case aNegative || bNegative:
		return PairDeclined
	case aPositive && bPositive:
		return PairMatched
	case aPositive || bPositive:
		return PairPending
	default:
		return PairUnresolved
	}
}
