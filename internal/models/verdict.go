package models

// ClassificationVerdict is the outcome of evaluating a candidate URL against
// the origin it was found on.
type ClassificationVerdict string

const (
	VerdictExcluded                        ClassificationVerdict = "excluded"
	VerdictSameOriginSubpage               ClassificationVerdict = "same_origin_subpage"
	VerdictInternalToolOnSameOrigin        ClassificationVerdict = "internal_tool_on_same_origin"
	VerdictDifferentHostname               ClassificationVerdict = "different_hostname"
	VerdictDifferentServiceByPathIndicator ClassificationVerdict = "different_service_by_path_indicator"
)

// IsDifferentService reports whether the verdict marks the candidate as a
// distinct service the company operates. Only differentHostname and
// differentServiceByPathIndicator qualify.
func (v ClassificationVerdict) IsDifferentService() bool {
	return v == VerdictDifferentHostname || v == VerdictDifferentServiceByPathIndicator
}
