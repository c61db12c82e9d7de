package metadata

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause MUST NOT be used to derive fallback, retry or recursion decisions.
	 - Packages MAY map their local errors to ErrorCause but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown
  - The failure does not map cleanly to any known category.

# CauseNetworkFailure
  - Transport or remote availability problems: timeouts, DNS, resets, 5xx.

# CausePolicyDisallow
  - A policy refused the work: 403, 429, unsafe handlers disabled.

# CauseContentInvalid
  - Content was fetched but could not be interpreted: malformed markup,
    wrong root element, undecodable text.

# CauseResourceMissing
  - The referenced resource does not exist or cannot be read.

# CauseRetryFailure
  - Retries were exhausted without a successful attempt.

# CauseInvariantViolation
  - A resolver invariant was violated, such as exceeding the recursion bound.

# CauseCancelled
  - The caller cancelled the resolution.

# CauseStorageFailure
  - Writing a resolution report to disk failed.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseResourceMissing
	CauseRetryFailure
	CauseInvariantViolation
	CauseCancelled
	CauseStorageFailure
)

var causeNames = map[ErrorCause]string{
	CauseUnknown:            "unknown",
	CauseNetworkFailure:     "network_failure",
	CausePolicyDisallow:     "policy_disallow",
	CauseContentInvalid:     "content_invalid",
	CauseResourceMissing:    "resource_missing",
	CauseRetryFailure:       "retry_failure",
	CauseInvariantViolation: "invariant_violation",
	CauseCancelled:          "cancelled",
	CauseStorageFailure:     "storage_failure",
}

func (c ErrorCause) String() string {
	if name, ok := causeNames[c]; ok {
		return name
	}
	return causeNames[CauseUnknown]
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrRef        AttributeKey = "ref"
	AttrBase       AttributeKey = "base"
	AttrHost       AttributeKey = "host"
	AttrPath       AttributeKey = "path"
	AttrDepth      AttributeKey = "depth"
	AttrHandler    AttributeKey = "handler"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrMessage    AttributeKey = "message"
	AttrCallID     AttributeKey = "call_id"
	AttrWritePath  AttributeKey = "write_path"
	AttrHash       AttributeKey = "hash"
)

// FetchSource distinguishes where content came from.
type FetchSource string

const (
	SourceHTTP  FetchSource = "http"
	SourceLocal FetchSource = "local"
)
