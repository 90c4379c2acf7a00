package moderu

import "strings"

// EscapeToken escapes one JSON Pointer reference token per RFC 6901
// ("~" -> "~0", "/" -> "~1").
func EscapeToken(tok string) string {
	if !strings.ContainsAny(tok, "~/") {
		return tok
	}
	tok = strings.ReplaceAll(tok, "~", "~0")
	return strings.ReplaceAll(tok, "/", "~1")
}

// RebaseIssues prefixes every issue path in err with base (a "/key"-style
// pointer). Issues reported at the child root ("/" or "") collapse onto base
// itself. A non-Issues error becomes a single parse_error carrying the cause.
func RebaseIssues(base string, err error) Issues {
	if err == nil {
		return nil
	}
	iss, ok := AsIssues(err)
	if !ok {
		return Issues{{Path: base, Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	out := make(Issues, 0, len(iss))
	for _, it := range iss {
		switch it.Path {
		case "", "/":
			it.Path = base
		default:
			it.Path = base + it.Path
		}
		out = append(out, it)
	}
	return out
}
