package variants

import "github.com/google/uuid"

// MemberDTO is one family member as served to the storefront.
type MemberDTO struct {
	ID         uuid.UUID `json:"id"`
	SKU        string    `json:"sku"`
	SizeMm     int       `json:"size_mm"`
	ColorKey   string    `json:"color_key"`
	ColorLabel string    `json:"color_label"`
	ThumbURL   string    `json:"thumb_url,omitempty"`
}

// ColorGroupDTO is one entry in the color switcher.
type ColorGroupDTO struct {
	ColorKey   string    `json:"color_key"`
	ColorLabel string    `json:"color_label"`
	ThumbURL   string    `json:"thumb_url,omitempty"`
	MemberID   uuid.UUID `json:"member_id"`
}

// FamilyDTO is the resolved variant family for a product page.
type FamilyDTO struct {
	CurrentID uuid.UUID       `json:"current_id"`
	Sizes     []int           `json:"sizes"`
	Colors    []ColorGroupDTO `json:"colors"`
	Members   []MemberDTO     `json:"members"`
}

func toMemberDTO(member Member) MemberDTO {
	return MemberDTO{
		ID:         member.ID,
		SKU:        member.SKU,
		SizeMm:     member.SizeKeyMm,
		ColorKey:   member.ColorKey,
		ColorLabel: member.ColorLabel,
		ThumbURL:   member.ThumbURL,
	}
}

func toFamilyDTO(family *Family, current Member) *FamilyDTO {
	members := family.Members()
	memberDTOs := make([]MemberDTO, 0, len(members))
	for _, member := range members {
		memberDTOs = append(memberDTOs, toMemberDTO(member))
	}

	groups := family.Colors()
	groupDTOs := make([]ColorGroupDTO, 0, len(groups))
	for _, group := range groups {
		groupDTOs = append(groupDTOs, ColorGroupDTO{
			ColorKey:   group.ColorKey,
			ColorLabel: group.ColorLabel,
			ThumbURL:   group.ThumbURL,
			MemberID:   group.MemberID,
		})
	}

	return &FamilyDTO{
		CurrentID: current.ID,
		Sizes:     family.Sizes(),
		Colors:    groupDTOs,
		Members:   memberDTOs,
	}
}
