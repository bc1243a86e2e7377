package models

// RiddleDTO is the external-facing shape of a riddle. The secret answer is
// only populated for admin reads.
type RiddleDTO struct {
	ID                  uint   `json:"id"`
	Question            string `json:"question"`
	Image               string `json:"image,omitempty"`
	AnswerCaseSensitive bool   `json:"answer_case_sensitive"`
	NextRiddleID        *uint  `json:"next_riddle_id,omitempty"`
	Answer              string `json:"answer,omitempty"` // Only for admin
}

func (r Riddle) ToDTO(includeAnswer bool) RiddleDTO {
	dto := RiddleDTO{
		ID:                  r.ID,
		Question:            r.Question,
		Image:               r.Image,
		AnswerCaseSensitive: r.AnswerCaseSensitive,
		NextRiddleID:        r.NextRiddleID,
	}
	if includeAnswer {
		dto.Answer = r.Answer
	}
	return dto
}
