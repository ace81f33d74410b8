package dto

// CreateMatchRequest принимает как имена REST-контракта, так и имена
// полей рекомендателя (userA, userVector, candidates)
type CreateMatchRequest struct {
	RequesterID     string    `json:"requesterId"`
	RequesterVector []float64 `json:"requesterVector"`
	CandidateIDs    []string  `json:"candidateIds"`

	UserA      string    `json:"userA"`
	UserVector []float64 `json:"userVector"`
	Candidates []string  `json:"candidates"`
}

// Normalize сводит алиасы к основным полям
func (r *CreateMatchRequest) Normalize() {
	if r.RequesterID == "" {
		r.RequesterID = r.UserA
	}
	if r.RequesterVector == nil {
		r.RequesterVector = r.UserVector
	}
	if len(r.CandidateIDs) == 0 {
		r.CandidateIDs = r.Candidates
	}
}
