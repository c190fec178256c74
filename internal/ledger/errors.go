package ledger

import "errors"

// Admission and authorization failures. Every check runs before any mutation,
// so a rejected operation never leaves partial state behind.
var (
	ErrInvalidAmount      = errors.New("le montant doit être strictement positif")
	ErrInvalidContributor = errors.New("le propriétaire d'un cadeau ne peut pas y contribuer ni gérer son achat")
	ErrForbidden          = errors.New("action réservée à son auteur")
	ErrNotFound           = errors.New("élément introuvable")
	ErrGiftPurchased      = errors.New("ce cadeau a déjà été acheté")
	ErrAlreadyPurchased   = errors.New("ce cadeau est déjà marqué comme acheté")
)

// Kind classifies an error returned by the ledger or by code wrapping it.
type Kind int

const (
	KindNone Kind = iota
	KindInvalidAmount
	KindInvalidContributor
	KindForbidden
	KindNotFound
	KindConflict
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidAmount:
		return "invalid_amount"
	case KindInvalidContributor:
		return "invalid_contributor"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of err, looking through wrapping.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidAmount):
		return KindInvalidAmount
	case errors.Is(err, ErrInvalidContributor):
		return KindInvalidContributor
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrGiftPurchased), errors.Is(err, ErrAlreadyPurchased):
		return KindConflict
	default:
		return KindUnknown
	}
}
