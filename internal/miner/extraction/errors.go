package extraction

import "errors"

// Skip sentinels. Assemble and CorpusFilter.Accept return exactly one of
// these when an element produces no record; callers count them by reason.
var (
	ErrMissingIdentifier = errors.New("element has no identifier")
	ErrBlacklisted       = errors.New("identifier is blacklisted")
	ErrAttachmentMiss    = errors.New("no documentation attached")
	ErrQualityRejection  = errors.New("documentation rejected by quality filter")
	ErrTokenBand         = errors.New("docstring token count outside band")
)

// Skip reasons as stored in run statistics.
const (
	ReasonMissingIdentifier = "missing_identifier"
	ReasonBlacklisted       = "blacklisted"
	ReasonAttachmentMiss    = "attachment_miss"
	ReasonQualityRejection  = "quality_rejection"
	ReasonTokenBand         = "token_band"
	ReasonPanic             = "panic"
)

// SkipReason maps a skip sentinel to its reason key. Unknown errors map to "".
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingIdentifier):
		return ReasonMissingIdentifier
	case errors.Is(err, ErrBlacklisted):
		return ReasonBlacklisted
	case errors.Is(err, ErrAttachmentMiss):
		return ReasonAttachmentMiss
	case errors.Is(err, ErrQualityRejection):
		return ReasonQualityRejection
	case errors.Is(err, ErrTokenBand):
		return ReasonTokenBand
	default:
		return ""
	}
}
