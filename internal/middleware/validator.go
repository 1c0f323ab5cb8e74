package middleware

import (
	"fmt"
	"regexp"
)

// Input validation utilities

// githubRepoPattern matches exactly https://github.com/<owner>/<name>.git
// with owner and name each one-or-more non-slash characters. Anything
// else (missing scheme, plain http, extra path segments, missing .git
// suffix) fails.
var githubRepoPattern = regexp.MustCompile(`^https://github\.com/[^/]+/[^/]+\.git$`)

// IsValidGitHubURL reports whether url is a clonable GitHub repository
// URL. Pure and deterministic; no side effects.
func IsValidGitHubURL(url string) bool {
	return githubRepoPattern.MatchString(url)
}

// ValidateGitHubURL returns the user-facing error for a bad URL, or nil.
func ValidateGitHubURL(url string) error {
	if url == "" {
		return fmt.Errorf("GitHub URL is required")
	}
	if !IsValidGitHubURL(url) {
		return fmt.Errorf("Invalid GitHub URL format")
	}
	return nil
}
