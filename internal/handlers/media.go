// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"signage/internal/media"
)

// ProbeMedia returns the length of a media file in whole seconds; 0 means
// it could not be determined.
func (a *API) ProbeMedia(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		writeError(w, http.StatusUnprocessableEntity, "url must be an absolute http(s) URL")
		return
	}
	if err := media.CheckURL(u); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "url must point to a public host")
		return
	}

	secs := 0
	if a.prober != nil {
		secs = a.prober.Duration(r.Context(), u.String())
	}
	writeJSON(w, http.StatusOK, map[string]int{"duration_seconds": secs})
}
