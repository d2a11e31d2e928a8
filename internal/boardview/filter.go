package boardview

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
)

// StatusFilter selects rooms by status: all, reported, unreported, or one
// concrete status value (see ForStatus).
type StatusFilter string

const (
	FilterAll        StatusFilter = "all"
	FilterReported   StatusFilter = "reported"
	FilterUnreported StatusFilter = "unreported"
)

// ForStatus filter matching exactly one status.
func ForStatus(s domain.Status) StatusFilter {
	return StatusFilter(s)
}

// ParseStatusFilter accepts all|reported|unreported or a status wire value.
func ParseStatusFilter(raw string) (StatusFilter, bool) {
	switch f := StatusFilter(raw); f {
	case FilterAll, FilterReported, FilterUnreported:
		return f, true
	}
	if s, ok := domain.ParseStatus(raw); ok {
		return ForStatus(s), true
	}
	return "", false
}

type SortBy string

const (
	SortByFloor     SortBy = "floor"
	SortByUpdatedAt SortBy = "updatedAt"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FilterState filter and sort settings of the board.
type FilterState struct {
	StatusFilter StatusFilter `json:"statusFilter"`
	HasRemark    bool         `json:"hasRemarkFilter"`
	SortBy       SortBy       `json:"sortBy"`
	SortOrder    SortOrder    `json:"sortOrder"`
}

// DefaultFilterState everything visible, list sorted by floor descending.
func DefaultFilterState() FilterState {
	return FilterState{
		StatusFilter: FilterAll,
		HasRemark:    false,
		SortBy:       SortByFloor,
		SortOrder:    SortDesc,
	}
}

// ParseFilterState reads status, hasRemark, sortBy and sortOrder from query
// values. Missing values take defaults; invalid values are an error.
func ParseFilterState(q url.Values) (FilterState, error) {
	f := DefaultFilterState()

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		sf, ok := ParseStatusFilter(raw)
		if !ok {
			return f, fmt.Errorf("invalid status filter %q", raw)
		}
		f.StatusFilter = sf
	}
	if raw := strings.TrimSpace(q.Get("hasRemark")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, fmt.Errorf("invalid hasRemark %q", raw)
		}
		f.HasRemark = v
	}
	if raw := strings.TrimSpace(q.Get("sortBy")); raw != "" {
		switch SortBy(raw) {
		case SortByFloor, SortByUpdatedAt:
			f.SortBy = SortBy(raw)
		default:
			return f, fmt.Errorf("invalid sortBy %q", raw)
		}
	}
	if raw := strings.TrimSpace(q.Get("sortOrder")); raw != "" {
		switch SortOrder(raw) {
		case SortAsc, SortDesc:
			f.SortOrder = SortOrder(raw)
		default:
			return f, fmt.Errorf("invalid sortOrder %q", raw)
		}
	}
	return f, nil
}

// IsVisible reports whether a room passes the filter. A nil record is an
// unreported room with no remark. Unknown status values count as unreported.
func IsVisible(record *domain.UnitRecord, f FilterState) bool {
	var (
		status    domain.Status
		hasStatus bool
		remark    string
	)
	if record != nil {
		status, hasStatus = domain.ParseStatus(record.Status)
		remark = record.Remark
	}

	switch f.StatusFilter {
	case FilterAll, "":
	case FilterReported:
		if !hasStatus {
			return false
		}
	case FilterUnreported:
		if hasStatus {
			return false
		}
	default:
		if !hasStatus || ForStatus(status) != f.StatusFilter {
			return false
		}
	}

	if f.HasRemark && strings.TrimSpace(remark) == "" {
		return false
	}
	return true
}
