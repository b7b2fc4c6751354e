package models

import (
	"time"

	"github.com/google/uuid"
)

// BlockType tags the kind of a block.
type BlockType string

const (
	BlockShortText      BlockType = "short_text"
	BlockLongText       BlockType = "long_text"
	BlockEmail          BlockType = "email"
	BlockNumber         BlockType = "number"
	BlockPhone          BlockType = "phone"
	BlockURL            BlockType = "url"
	BlockMultipleChoice BlockType = "multiple_choice"
	BlockCheckboxes     BlockType = "checkboxes"
	BlockDropdown       BlockType = "dropdown"
	BlockRating         BlockType = "rating"
	BlockScale          BlockType = "scale"
	BlockDate           BlockType = "date"
	BlockTime           BlockType = "time"
	BlockFileUpload     BlockType = "file_upload"
	BlockYesNo          BlockType = "yes_no"
	BlockRanking        BlockType = "ranking"
	BlockSignature      BlockType = "signature"
	BlockHeading        BlockType = "heading"
	BlockParagraph      BlockType = "paragraph"
	BlockDivider        BlockType = "divider"
	BlockImage          BlockType = "image"
	BlockVideo          BlockType = "video"
)

// BlockTypes lists every supported block type, in editor order.
var BlockTypes = []BlockType{
	BlockShortText, BlockLongText, BlockEmail, BlockNumber, BlockPhone, BlockURL,
	BlockMultipleChoice, BlockCheckboxes, BlockDropdown, BlockRating, BlockScale,
	BlockDate, BlockTime, BlockFileUpload, BlockYesNo, BlockRanking, BlockSignature,
	BlockHeading, BlockParagraph, BlockDivider, BlockImage, BlockVideo,
}

// Valid reports whether t is a supported block type.
func (t BlockType) Valid() bool {
	for _, bt := range BlockTypes {
		if bt == t {
			return true
		}
	}
	return false
}

// IsInput reports whether the block collects an answer.
func (t BlockType) IsInput() bool {
	switch t {
	case BlockHeading, BlockParagraph, BlockDivider, BlockImage, BlockVideo:
		return false
	}
	return true
}

// Block is a single configurable unit of a form. FieldKey is unique within
// the form and correlates submitted answers to the block.
type Block struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FormID    uuid.UUID `json:"form_id" db:"form_id"`
	Type      BlockType `json:"type" db:"type"`
	Label     string    `json:"label" db:"label"`
	FieldKey  string    `json:"field_key" db:"field_key"`
	Position  int       `json:"position" db:"position"`
	Required  bool      `json:"required" db:"required"`
	Config    JSONMap   `json:"config" db:"config"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
