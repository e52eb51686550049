package catalog

type Category string

const (
	CategoryCuts          Category = "cuts"
	CategoryColor         Category = "color"
	CategoryStyling       Category = "styling"
	CategoryTreatments    Category = "treatments"
	CategoryPackages      Category = "packages"
	CategoryConsultations Category = "consultations"
)

func (c Category) String() string {
	return string(c)
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryCuts, CategoryColor, CategoryStyling, CategoryTreatments, CategoryPackages, CategoryConsultations:
		return true
	default:
		return false
	}
}

func NewCategory(s string) (Category, error) {
	cat := Category(s)
	if !cat.IsValid() {
		return "", ErrInvalidCategory
	}
	return cat, nil
}
