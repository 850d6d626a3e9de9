package dashboard

import (
	"strconv"

	"github.com/nhle/carepartner/internal/model"
)

// ComparisonLabel names the previous period a trend is measured against.
func ComparisonLabel(dt model.DailyType) string {
	switch dt {
	case model.DailyTypeWeekly:
		return "전주대비"
	case model.DailyTypeMonthly:
		return "전월대비"
	default:
		return "전일대비"
	}
}

// RelativePeriodLabel names a period by how far back it is: 0 is the
// current period, 1 the one before.
func RelativePeriodLabel(dt model.DailyType, dayIndex int) string {
	n := strconv.Itoa(dayIndex)
	switch dt {
	case model.DailyTypeWeekly:
		switch dayIndex {
		case 0:
			return "이번주"
		case 1:
			return "지난주"
		}
		return n + "주전"
	case model.DailyTypeMonthly:
		switch dayIndex {
		case 0:
			return "이번달"
		case 1:
			return "지난달"
		}
		return n + "달전"
	default:
		switch dayIndex {
		case 0:
			return "오늘"
		case 1:
			return "어제"
		}
		return n + "일전"
	}
}

// TopTagsTitle is the heading of the top-tag table.
func TopTagsTitle(dt model.DailyType, n int) string {
	span := "월간"
	if dt == model.DailyTypeWeekly {
		span = "주간"
	}
	return "인입이 높은 태그 top " + strconv.Itoa(n) + " (" + span + ")"
}
