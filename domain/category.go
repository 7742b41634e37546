package domain

// DefaultCategories seeds a fresh category set when configuration supplies none.
var DefaultCategories = []string{"Personal", "Work", "Shopping", "Health", "Other"}

// CategorySet is an ordered set of labels compared case-sensitively.
type CategorySet struct {
	labels []string
}

// NewCategorySet builds a set from labels, dropping empties and duplicates.
func NewCategorySet(labels ...string) *CategorySet {
	set := &CategorySet{}
	for _, label := range labels {
		set.Add(label)
	}
	return set
}

// Add appends label unless it is empty, the CategoryAll filter, or already
// present.
func (s *CategorySet) Add(label string) bool {
	if label == "" || label == CategoryAll || s.Contains(label) {
		return false
	}
	s.labels = append(s.labels, label)
	return true
}

func (s *CategorySet) Remove(label string) bool {
	for i, existing := range s.labels {
		if existing == label {
			s.labels = append(s.labels[:i], s.labels[i+1:]...)
			return true
		}
	}
	return false
}

func (s *CategorySet) Contains(label string) bool {
	for _, existing := range s.labels {
		if existing == label {
			return true
		}
	}
	return false
}

// Labels returns a copy of the labels in insertion order.
func (s *CategorySet) Labels() []string {
	return append([]string(nil), s.labels...)
}

func (s *CategorySet) Len() int {
	return len(s.labels)
}
