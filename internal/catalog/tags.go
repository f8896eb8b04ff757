package catalog

import (
	"fmt"
	"strings"
)

// Tag marks a strategy as applicable to a class of properties.
type Tag uint8

const (
	TagOlderHome Tag = iota
	TagCosmetic
	TagMarketing
	TagDatedFeatures
	TagStaging
	TagStorage
	TagLayout
	TagCurbAppeal
	TagEmptyHome
	TagKitchen
	TagBathroom
	TagHighImpact
	TagHighROI
	TagBasement
	TagBrick
	TagFireplace
	TagPorch
	TagRoof
	TagMultiStory
	TagYard
	TagFencing
	TagEntertainment
	TagLuxury
	TagSystems
	TagHVAC

	tagCount
)

var tagNames = [tagCount]string{
	TagOlderHome:     "older-home",
	TagCosmetic:      "cosmetic",
	TagMarketing:     "marketing",
	TagDatedFeatures: "dated-features",
	TagStaging:       "staging",
	TagStorage:       "storage",
	TagLayout:        "layout",
	TagCurbAppeal:    "curb-appeal",
	TagEmptyHome:     "empty-home",
	TagKitchen:       "kitchen",
	TagBathroom:      "bathroom",
	TagHighImpact:    "high-impact",
	TagHighROI:       "high-roi",
	TagBasement:      "basement",
	TagBrick:         "brick",
	TagFireplace:     "fireplace",
	TagPorch:         "porch",
	TagRoof:          "roof",
	TagMultiStory:    "multi-story",
	TagYard:          "yard",
	TagFencing:       "fencing",
	TagEntertainment: "entertainment",
	TagLuxury:        "luxury",
	TagSystems:       "systems",
	TagHVAC:          "hvac",
}

func (t Tag) String() string {
	if t < tagCount {
		return tagNames[t]
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// ParseTag resolves a catalog tag name such as "older-home".
func ParseTag(name string) (Tag, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range tagNames {
		if s == n {
			return Tag(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tag %q", name)
}

// TagSet is a bit set of tags.
type TagSet uint32

func NewTagSet(tags ...Tag) TagSet {
	var s TagSet
	for _, t := range tags {
		s |= 1 << t
	}
	return s
}

func (s TagSet) Has(t Tag) bool { return s&(1<<t) != 0 }

// HasAny reports whether at least one of tags is in the set.
func (s TagSet) HasAny(tags ...Tag) bool {
	return s&NewTagSet(tags...) != 0
}

// Tags lists the members in declaration order.
func (s TagSet) Tags() []Tag {
	var out []Tag
	for t := Tag(0); t < tagCount; t++ {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s TagSet) Strings() []string {
	tags := s.Tags()
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.String())
	}
	return out
}
