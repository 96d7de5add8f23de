package protocol

const (
	// Transport/request validation.
	ErrBadRequest = "E_BAD_REQUEST"
	ErrInternal   = "E_INTERNAL"

	// Inventory/economy layer.
	ErrItemNotFound         = "E_ITEM_NOT_FOUND"
	ErrOutOfStock           = "E_OUT_OF_STOCK"
	ErrInsufficientFunds    = "E_INSUFFICIENT_FUNDS"
	ErrInsufficientQuantity = "E_INSUFFICIENT_QUANTITY"
	ErrNotSellable          = "E_NOT_SELLABLE"
	ErrInsufficientMaterial = "E_INSUFFICIENT_MATERIALS"
	ErrUnknownEffect        = "E_UNKNOWN_EFFECT"

	// Skill progression.
	ErrSkillNotFound   = "E_SKILL_NOT_FOUND"
	ErrMaxLevelReached = "E_MAX_LEVEL_REACHED"
	ErrNoSkillPoints   = "E_INSUFFICIENT_SKILL_POINTS"
	ErrPrereqsNotMet   = "E_PREREQUISITES_NOT_MET"

	// Challenge sessions.
	ErrNoActiveChallenge = "E_NO_ACTIVE_CHALLENGE"
	ErrChallengeActive   = "E_CHALLENGE_ACTIVE"
)

var knownCodes = map[string]struct{}{
	ErrBadRequest:           {},
	ErrInternal:             {},
	ErrItemNotFound:         {},
	ErrOutOfStock:           {},
	ErrInsufficientFunds:    {},
	ErrInsufficientQuantity: {},
	ErrNotSellable:          {},
	ErrInsufficientMaterial: {},
	ErrUnknownEffect:        {},
	ErrSkillNotFound:        {},
	ErrMaxLevelReached:      {},
	ErrNoSkillPoints:        {},
	ErrPrereqsNotMet:        {},
	ErrNoActiveChallenge:    {},
	ErrChallengeActive:      {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
