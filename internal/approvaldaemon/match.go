package approvaldaemon

import "regexp"

// regexpMatcher is a thin alias so daemon.go's field types read naturally;
// approval patterns are plain RE2 regexes matched against pane text.
type regexpMatcher = regexp.Regexp

func compileMatcher(pattern string) (*regexpMatcher, error) {
	return regexp.Compile(pattern)
}
