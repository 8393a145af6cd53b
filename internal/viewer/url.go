package viewer

import (
	"net/url"
	"strings"

	"github.com/wayfarerhq/mapbridge/config"
	"github.com/wayfarerhq/mapbridge/errors"
)

// BuildURL assembles the viewer URL from its configuration. The profile, when
// set, is carried as a path segment; everything else travels as query
// parameters. The building identifier is optional.
func BuildURL(cfg config.ViewerConfig) (string, error) {
	domain := strings.TrimRight(cfg.Domain, "/")
	u, err := url.Parse(domain)
	if err != nil || u.Host == "" {
		return "", errors.ValidationFailed("invalid viewer domain", cfg.Domain)
	}

	if profile := cfg.EffectiveProfile(); profile != "" {
		u.Path = strings.TrimRight(u.Path, "/") + "/id/" + profile
	}

	q := u.Query()
	q.Set("apikey", cfg.APIKey)
	q.Set("wl", "true")
	q.Set("global", "true")
	q.Set("mode", "embed")
	if cfg.BuildingIdentifier != "" {
		q.Set("buildingid", cfg.BuildingIdentifier)
	}
	q.Set("show", "rts")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// LoadErrorKind distinguishes why the viewer failed to load.
type LoadErrorKind string

const (
	// LoadErrorNetwork means the device could not reach the viewer at all.
	LoadErrorNetwork LoadErrorKind = "NO_NETWORK"
	// LoadErrorServer means the viewer host answered with a failure.
	LoadErrorServer LoadErrorKind = "SERVER_ERROR"
)

// ClassifyLoadError decides whether a viewer load failure was a connectivity
// problem or a server-side one. Status code 0 means no response was received;
// everything without a server answer counts as a network failure, including
// timeouts and DNS errors.
func ClassifyLoadError(statusCode int, err error) (LoadErrorKind, *errors.AppError) {
	if statusCode >= 400 {
		return LoadErrorServer, errors.NewViewerTransportError(string(LoadErrorServer), err)
	}
	return LoadErrorNetwork, errors.NewViewerTransportError(string(LoadErrorNetwork), err)
}
