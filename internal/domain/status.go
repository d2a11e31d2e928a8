package domain

// Status reported safety state of a room. The zero value means unreported.
type Status string

const (
	StatusSafe     Status = "safe"
	StatusDanger   Status = "danger"
	StatusDeceased Status = "deceased"
	StatusMixed    Status = "mixed"
	StatusMissing  Status = "missing"
)

// Statuses lists every reportable status in display order.
var Statuses = []Status{StatusSafe, StatusDanger, StatusDeceased, StatusMixed, StatusMissing}

// ParseStatus maps a wire value to a Status. Empty or unknown values are not ok
// and must be treated as unreported.
func ParseStatus(raw string) (Status, bool) {
	switch s := Status(raw); s {
	case StatusSafe, StatusDanger, StatusDeceased, StatusMixed, StatusMissing:
		return s, true
	default:
		return "", false
	}
}

func (s Status) Valid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

// Label display label used by the board and the workbook export.
func (s Status) Label() string {
	switch s {
	case StatusSafe:
		return "平安"
	case StatusDanger:
		return "求救"
	case StatusDeceased:
		return "離世"
	case StatusMixed:
		return "複雜"
	case StatusMissing:
		return "尋人"
	default:
		return "未有更新"
	}
}

// Source where a report came from
type Source string

const (
	SourceCitizen     Source = "citizen"
	SourceFamilyMedia Source = "family_media"
	SourcePartner     Source = "partner"
)

// DefaultSource is used when a write omits the source.
const DefaultSource = SourceCitizen

var Sources = []Source{SourceCitizen, SourceFamilyMedia, SourcePartner}

func ParseSource(raw string) (Source, bool) {
	switch s := Source(raw); s {
	case SourceCitizen, SourceFamilyMedia, SourcePartner:
		return s, true
	default:
		return "", false
	}
}

func (s Source) Label() string {
	switch s {
	case SourceCitizen:
		return "網民"
	case SourceFamilyMedia:
		return "家屬/傳媒"
	case SourcePartner:
		return "友台"
	default:
		return ""
	}
}
