package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
)

// pruneParam reads ?prune=. Sync requests are complete snapshots unless the
// client says otherwise.
func pruneParam(r *http.Request) (bool, error) {
	v := r.URL.Query().Get("prune")
	if v == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid prune value %q", v)
	}
	return b, nil
}

// pageParam reads ?page=, defaulting to the first page.
func pageParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("page")
	if v == "" {
		return 0, nil
	}
	page, err := strconv.Atoi(v)
	if err != nil || page < 0 {
		return 0, fmt.Errorf("invalid page %q", v)
	}
	return page, nil
}
