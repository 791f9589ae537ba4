// Package version provides update checking against GitHub releases and
// semantic version comparison.
package version

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	releaseURL     = "https://api.github.com/repos/AgileSoftDev-2025/storycanvas/releases/latest"
	checkTimeout   = 5 * time.Second
	installModPath = "github.com/AgileSoftDev-2025/storycanvas"
)

// CheckResult holds the result of a version check.
type CheckResult struct {
	CurrentVersion string
	LatestVersion  string
	UpdateURL      string
	HasUpdate      bool
	Error          error
}

// Check asks GitHub for the latest release and compares it against the
// running version. Development builds short-circuit: there is nothing
// meaningful to compare them to.
func Check(currentVersion string) CheckResult {
	result := CheckResult{CurrentVersion: currentVersion}
	if IsDevelopmentVersion(currentVersion) {
		return result
	}

	client := &http.Client{Timeout: checkTimeout}
	resp, err := client.Get(releaseURL)
	if err != nil {
		result.Error = err
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Errorf("github api: %s", resp.Status)
		return result
	}

	var release struct {
		TagName string `json:"tag_name"`
		HTMLURL string `json:"html_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		result.Error = err
		return result
	}

	result.LatestVersion = release.TagName
	result.UpdateURL = release.HTMLURL
	result.HasUpdate = isNewer(release.TagName, currentVersion)
	return result
}

// IsDevelopmentVersion returns true for non-release versions.
func IsDevelopmentVersion(v string) bool {
	switch {
	case v == "", v == "unknown", v == "dev", v == "devel":
		return true
	case strings.HasPrefix(v, "devel+"):
		return true
	}
	return false
}

// validVersionRegex accepts semver tags (v1.2.3, v1.2.3-beta.1) and
// rejects anything with shell metacharacters or malformed prerelease
// parts, since the matched value ends up in a suggested command line.
var validVersionRegex = regexp.MustCompile(`^v?\d+\.\d+\.\d+(-[a-zA-Z0-9]+([.-][a-zA-Z0-9]+)*)?$`)

// UpdateCommand builds the go install invocation for a release tag, or
// "" when the tag fails validation.
func UpdateCommand(version string) string {
	if !validVersionRegex.MatchString(version) {
		return ""
	}
	return fmt.Sprintf(
		"go install -ldflags \"-X main.Version=%s\" %s@%s",
		version, installModPath, version,
	)
}
