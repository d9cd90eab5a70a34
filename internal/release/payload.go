package release

import (
	"encoding/json"
	"strings"

	"github.com/nexhax/nexhax/internal/version"
)

// releasePayload mirrors the consumed fields of a GitHub release. Fields are
// kept raw because the API contract is not trusted: a field of the wrong
// type is treated as absent rather than failing the whole decode.
type releasePayload struct {
	TagName json.RawMessage `json:"tag_name"`
	Name    json.RawMessage `json:"name"`
	HTMLURL json.RawMessage `json:"html_url"`
	Assets  json.RawMessage `json:"assets"`
}

type assetPayload struct {
	Name               json.RawMessage `json:"name"`
	BrowserDownloadURL json.RawMessage `json:"browser_download_url"`
}

func (p releasePayload) info() *Info {
	tag, ok := stringValue(p.TagName)
	if !ok {
		tag, _ = stringValue(p.Name)
	}

	latest := version.Normalize(tag)
	if latest == "" {
		return nil
	}

	info := &Info{LatestVersion: latest}
	if u, ok := stringValue(p.HTMLURL); ok && u != "" {
		info.HTMLURL = &u
	}
	if u := selectPackage(p.assets()); u != "" {
		info.APKURL = &u
	}
	return info
}

func (p releasePayload) assets() []assetPayload {
	var assets []json.RawMessage
	if err := json.Unmarshal(p.Assets, &assets); err != nil {
		return nil
	}

	out := make([]assetPayload, 0, len(assets))
	for _, raw := range assets {
		var a assetPayload
		if err := json.Unmarshal(raw, &a); err != nil {
			continue
		}
		out = append(out, a)
	}
	return out
}

// selectPackage returns the download URL of the preferred asset, else of
// the first asset ending in .apk, else "".
func selectPackage(assets []assetPayload) string {
	for _, a := range assets {
		if name, _ := stringValue(a.Name); name == PreferredAsset {
			u, _ := stringValue(a.BrowserDownloadURL)
			return u
		}
	}
	for _, a := range assets {
		if name, ok := stringValue(a.Name); ok && strings.HasSuffix(name, PackageExt) {
			u, _ := stringValue(a.BrowserDownloadURL)
			return u
		}
	}
	return ""
}

// stringValue decodes raw as a JSON string. Missing, null and non-string
// values report false.
func stringValue(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
