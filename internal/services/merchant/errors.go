package merchant

import "merchantapi/internal/repositories"

// Service errors. They alias the repository sentinels so errors.Is matches
// whichever layer produced them.
var (
	ErrMerchantNotFound = repositories.ErrMerchantNotFound
	ErrEmailTaken       = repositories.ErrEmailTaken
)
