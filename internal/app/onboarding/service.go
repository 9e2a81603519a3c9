package onboarding

import (
	"context"
	"fmt"

	"morris/internal/ports"

	"lukechampine.com/frand"
)

const startingRating = 1000

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
	Seeded           bool
	DisplayName      string
}

// Service handles post-auth onboarding for new players.
type Service struct {
	accounts ports.AccountPort
	ratings  ports.StartingRatingPort
	intn     func(n int) int
}

// NewService constructs an onboarding service. intn picks name parts and
// may be nil to use frand.
func NewService(accounts ports.AccountPort, ratings ports.StartingRatingPort, intn func(n int) int) *Service {
	if intn == nil {
		intn = frand.Intn
	}
	return &Service{
		accounts: accounts,
		ratings:  ratings,
		intn:     intn,
	}
}

// OnboardNewUser gives a new account a friendly name and its starting
// ladder points. Only the rating seed is fatal.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.ratings == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{DisplayName: s.generateFriendlyName()}
	if err := s.accounts.UpdateProfile(ctx, userID, result.DisplayName, result.DisplayName); err != nil {
		result.ProfileUpdateErr = err
	}

	seeded, err := s.ratings.SeedRatingOnce(ctx, userID, startingRating)
	if err != nil {
		return result, fmt.Errorf("failed to seed rating: %w", err)
	}
	result.Seeded = seeded
	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Quiet", "Stone", "Swift", "Clever", "Patient", "Bold", "Sly", "Steady", "Wary", "Keen"}
	nouns := []string{"Miller", "Shepherd", "Rook", "Warden", "Mason", "Piper", "Fox", "Heron", "Badger", "Owl"}

	adj := adjectives[s.intn(len(adjectives))]
	noun := nouns[s.intn(len(nouns))]
	num := s.intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
