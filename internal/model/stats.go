package model

// AdminStats is the platform-wide dashboard rollup.
type AdminStats struct {
	TotalStudents     int            `json:"total_students"`
	TotalProfessors   int            `json:"total_professors"`
	RoomsByStatus     map[string]int `json:"rooms_by_status"`
	TotalEvaluations  int            `json:"total_evaluations"`
	AverageScore      float64        `json:"average_score"`
	UnusedAccessCodes int            `json:"unused_access_codes"`
}

// ProfessorStats is a professor's personal dashboard.
type ProfessorStats struct {
	RoomsByStatus    map[string]int `json:"rooms_by_status"`
	DistinctStudents int            `json:"distinct_students"`
	TotalEvaluations int            `json:"total_evaluations"`
	TotalQuizzes     int            `json:"total_quizzes"`
	TotalChallenges  int            `json:"total_challenges"`
}

// StudentStats is a student's personal dashboard.
type StudentStats struct {
	SessionsAttended int     `json:"sessions_attended"`
	UpcomingSessions int     `json:"upcoming_sessions"`
	TotalEvaluations int     `json:"total_evaluations"`
	AverageScore     float64 `json:"average_score"`
	ChallengePoints  int     `json:"challenge_points"`
	QuizzesPassed    int     `json:"quizzes_passed"`
}
