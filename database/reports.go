package database

import "context"

// DashboardCounts holds the headline totals shown on the admin dashboard.
type DashboardCounts struct {
	Students          int64 `json:"students"`
	ActiveStudents    int64 `json:"active_students"`
	Instructors       int64 `json:"instructors"`
	Courses           int64 `json:"courses"`
	Sections          int64 `json:"sections"`
	ActiveEnrollments int64 `json:"active_enrollments"`
}

// GradeDistributionRow is one bucket of the school-wide grade distribution.
type GradeDistributionRow struct {
	GradeLetter string  `json:"grade_letter"`
	Count       int64   `json:"count"`
	AvgScore    float64 `json:"avg_score"`
}

// SectionOccupancyRow reports how full a section is.
type SectionOccupancyRow struct {
	SectionID   uint    `json:"section_id"`
	SectionCode string  `json:"section_code"`
	CourseCode  string  `json:"course_code"`
	CourseName  string  `json:"course_name"`
	Semester    string  `json:"semester"`
	Enrolled    int64   `json:"enrolled"`
	MaxCapacity int     `json:"max_capacity"`
	FillRate    float64 `json:"fill_rate"`
}

// SectionAttendanceRow summarizes recorded attendance for a section.
type SectionAttendanceRow struct {
	SectionID     uint    `json:"section_id"`
	SectionCode   string  `json:"section_code"`
	CourseCode    string  `json:"course_code"`
	TotalSessions int     `json:"total_sessions"`
	Records       int64   `json:"records"`
	PresentCount  int64   `json:"present_count"`
	PresenceRate  float64 `json:"presence_rate"`
}

// DashboardCounts runs the headline aggregates in a single query.
func (s *PostgreSQLStore) DashboardCounts(ctx context.Context) (*DashboardCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM students WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM students WHERE deleted_at IS NULL AND is_active),
			(SELECT COUNT(*) FROM instructors WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM courses WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM sections WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM enrollments WHERE deleted_at IS NULL AND status = 'active')
	`

	var counts DashboardCounts
	err := s.db.QueryRowContext(ctx, query).Scan(
		&counts.Students,
		&counts.ActiveStudents,
		&counts.Instructors,
		&counts.Courses,
		&counts.Sections,
		&counts.ActiveEnrollments,
	)
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

// GradeDistribution returns the school-wide grade letter distribution.
// A zero semesterID means all semesters.
func (s *PostgreSQLStore) GradeDistribution(ctx context.Context, semesterID uint) ([]GradeDistributionRow, error) {
	query := `
		SELECT g.grade_letter, COUNT(*), ROUND(AVG(g.score)::numeric, 2)
		FROM grades g
		JOIN enrollments e ON e.id = g.enrollment_id AND e.deleted_at IS NULL
		JOIN sections sec ON sec.id = e.section_id AND sec.deleted_at IS NULL
		WHERE g.deleted_at IS NULL
		  AND ($1 = 0 OR sec.semester_id = $1)
		GROUP BY g.grade_letter
		ORDER BY MIN(g.score) DESC
	`

	rows, err := s.db.QueryContext(ctx, query, semesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var distribution []GradeDistributionRow
	for rows.Next() {
		var row GradeDistributionRow
		if err := rows.Scan(&row.GradeLetter, &row.Count, &row.AvgScore); err != nil {
			return nil, err
		}
		distribution = append(distribution, row)
	}
	return distribution, rows.Err()
}

// SectionOccupancy lists sections with their active enrollment counts
// and fill rate against capacity. A zero semesterID means all semesters.
func (s *PostgreSQLStore) SectionOccupancy(ctx context.Context, semesterID uint) ([]SectionOccupancyRow, error) {
	query := `
		SELECT
			sec.id,
			sec.section_code,
			c.course_code,
			c.name,
			sem.name,
			COUNT(e.id) FILTER (WHERE e.status = 'active' AND e.deleted_at IS NULL),
			sec.max_capacity
		FROM sections sec
		JOIN courses c ON c.id = sec.course_id
		JOIN semesters sem ON sem.id = sec.semester_id
		LEFT JOIN enrollments e ON e.section_id = sec.id
		WHERE sec.deleted_at IS NULL
		  AND ($1 = 0 OR sec.semester_id = $1)
		GROUP BY sec.id, sec.section_code, c.course_code, c.name, sem.name, sec.max_capacity
		ORDER BY c.course_code, sec.section_code
	`

	rows, err := s.db.QueryContext(ctx, query, semesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var occupancy []SectionOccupancyRow
	for rows.Next() {
		var row SectionOccupancyRow
		if err := rows.Scan(&row.SectionID, &row.SectionCode, &row.CourseCode, &row.CourseName, &row.Semester, &row.Enrolled, &row.MaxCapacity); err != nil {
			return nil, err
		}
		if row.MaxCapacity > 0 {
			row.FillRate = float64(row.Enrolled) / float64(row.MaxCapacity)
		}
		occupancy = append(occupancy, row)
	}
	return occupancy, rows.Err()
}

// SectionAttendanceOverview summarizes recorded attendance per section.
// The presence rate is presents over recorded entries, not over
// scheduled sessions; per-student rates against total_sessions live in
// the attendance service.
func (s *PostgreSQLStore) SectionAttendanceOverview(ctx context.Context, semesterID uint) ([]SectionAttendanceRow, error) {
	query := `
		SELECT
			sec.id,
			sec.section_code,
			c.course_code,
			sec.total_sessions,
			COUNT(a.id),
			COUNT(a.id) FILTER (WHERE a.status = 'present')
		FROM sections sec
		JOIN courses c ON c.id = sec.course_id
		LEFT JOIN attendances a ON a.section_id = sec.id AND a.deleted_at IS NULL
		WHERE sec.deleted_at IS NULL
		  AND ($1 = 0 OR sec.semester_id = $1)
		GROUP BY sec.id, sec.section_code, c.course_code, sec.total_sessions
		ORDER BY c.course_code, sec.section_code
	`

	rows, err := s.db.QueryContext(ctx, query, semesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overview []SectionAttendanceRow
	for rows.Next() {
		var row SectionAttendanceRow
		if err := rows.Scan(&row.SectionID, &row.SectionCode, &row.CourseCode, &row.TotalSessions, &row.Records, &row.PresentCount); err != nil {
			return nil, err
		}
		if row.Records > 0 {
			row.PresenceRate = float64(row.PresentCount) / float64(row.Records)
		}
		overview = append(overview, row)
	}
	return overview, rows.Err()
}
