package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/models"
)

// SeedRepositories groups the stores touched by SeedSampleData.
type SeedRepositories struct {
	Jobs        jobRepository
	Students    studentRepository
	Rounds      roundRepository
	Enrollments enrollmentRepository
}

// SeedSampleData loads the demo placement drive. It does nothing when any
// job already exists, so restarts against Postgres do not duplicate rows.
func SeedSampleData(ctx context.Context, repos SeedRepositories, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	existing, err := repos.Jobs.List(ctx)
	if err != nil {
		return fmt.Errorf("check existing jobs: %w", err)
	}
	if len(existing) > 0 {
		logger.Debug("sample data skipped", zap.Int("jobs", len(existing)))
		return nil
	}

	// Jobs are listed newest first, so the oldest posting goes in first.
	jobs := sampleJobs()
	for i := len(jobs) - 1; i >= 0; i-- {
		if err := repos.Jobs.Create(ctx, &jobs[i]); err != nil {
			return fmt.Errorf("seed job %q: %w", jobs[i].Title, err)
		}
	}

	students := sampleStudents()
	byEmail := make(map[string]int64, len(students))
	for i := range students {
		if err := repos.Students.Create(ctx, &students[i]); err != nil {
			return fmt.Errorf("seed student %q: %w", students[i].Name, err)
		}
		byEmail[students[i].Email] = students[i].ID
	}

	for _, seed := range sampleRounds() {
		round := seed.round
		if err := repos.Rounds.Create(ctx, &round); err != nil {
			return fmt.Errorf("seed round %q: %w", round.Name, err)
		}
		for _, entry := range seed.roster {
			enrollment := &models.Enrollment{RoundID: round.ID, StudentID: byEmail[entry.email], Status: entry.status}
			if err := repos.Enrollments.Create(ctx, enrollment); err != nil {
				return fmt.Errorf("seed enrollment %s in %q: %w", entry.email, round.Name, err)
			}
		}
	}

	logger.Info("sample data loaded", zap.Int("jobs", len(jobs)), zap.Int("students", len(students)))
	return nil
}

func sampleJobs() []models.Job {
	return []models.Job{
		{Title: "FINANCIAL ANALYST", Company: "MORGAN STANLEY", Location: "NAGPUR, INDIA", PostDate: "07/10/2024",
			Description: "ANALYZE FINANCIAL DATA, PREPARE REPORTS, AND ASSIST IN INVESTMENT DECISIONS.", Eligibility: false, Salary: "80000"},
		{Title: "SOFTWARE ENGINEER", Company: "J.P. MORGAN & CHASE", Location: "MUMBAI, INDIA", PostDate: "28/09/2024",
			Description: "DEVELOP AND MAINTAIN SOFTWARE SOLUTIONS FOR BANKING OPERATIONS.", Eligibility: false, Salary: "95000"},
		{Title: "INVESTMENT ANALYST", Company: "NOMURA", Location: "GURGAON", PostDate: "02/10/2024",
			Description: "SUPPORT SENIOR ANALYSTS IN EVALUATING INVESTMENT OPPORTUNITIES.", Eligibility: false, Salary: "90000"},
		{Title: "MARKETING SPECIALIST", Company: "GENERAL MILLS", Location: "DELHI", PostDate: "20/09/2024",
			Description: "DEVELOP AND IMPLEMENT MARKETING STRATEGIES FOR CONSUMER PRODUCTS.", Eligibility: true, Salary: "75000"},
		{Title: "DATA ANALYTICS", Company: "ACCENTURE", Location: "MUMBAI, INDIA", PostDate: "03/10/2024",
			Description: "ANALYZE BUSINESS DATA AND PROVIDE INSIGHTS FOR STRATEGIC DECISIONS.", Eligibility: true, Salary: "85000"},
		{Title: "IT CONSULTANT", Company: "CAPGEMINI", Location: "BANGALORE, INDIA", PostDate: "25/09/2024",
			Description: "PROVIDE IT CONSULTING SERVICES TO CLIENTS ACROSS VARIOUS INDUSTRIES.", Eligibility: true, Salary: "82000"},
	}
}

func sampleStudents() []models.Student {
	return []models.Student{
		{Name: "Rahul Sharma", Email: "rahul.s@example.com", Department: "Computer Science", CGPA: 8.7, Package: "12 LPA", Position: "Software Engineer"},
		{Name: "Priya Patel", Email: "priya.p@example.com", Department: "Information Technology", CGPA: 9.2, Package: "14 LPA", Position: "Frontend Developer"},
		{Name: "Amit Kumar", Email: "amit.k@example.com", Department: "Civil Engineering", CGPA: 7.8, Package: "8 LPA", Position: "Site Engineer"},
		{Name: "Sneha Gupta", Email: "sneha.g@example.com", Department: "Computer Science", CGPA: 8.9, Package: "13 LPA", Position: "Backend Developer"},
		{Name: "Vikram Singh", Email: "vikram.s@example.com", Department: "Electronics", CGPA: 8.5, Package: "10 LPA", Position: "Hardware Engineer"},
		{Name: "Ananya Desai", Email: "ananya.d@example.com", Department: "Information Technology", CGPA: 9.0, Package: "15 LPA", Position: "Full Stack Developer"},
		{Name: "Arjun Mehta", Email: "arjun.m@example.com", Department: "Computer Science", CGPA: 8.8, Package: "13.5 LPA", Position: "DevOps Engineer"},
		{Name: "Neha Reddy", Email: "neha.r@example.com", Department: "Electronics", CGPA: 8.6, Package: "11 LPA", Position: "System Engineer"},
		{Name: "Karan Malhotra", Email: "karan.m@example.com", Department: "Mechanical", CGPA: 8.3, Package: "9 LPA", Position: "Design Engineer"},
	}
}

type seedEntry struct {
	email  string
	status models.EnrollmentStatus
}

type seedRound struct {
	round  models.Round
	roster []seedEntry
}

func sampleRounds() []seedRound {
	return []seedRound{
		{
			round: models.Round{Name: "Resume Screening", Date: "2024-10-15", Time: "09:00", Mode: models.RoundModeOnline, Status: models.RoundStatusCompleted},
			roster: []seedEntry{
				{"rahul.s@example.com", models.EnrollmentStatusSelected},
				{"priya.p@example.com", models.EnrollmentStatusSelected},
				{"amit.k@example.com", models.EnrollmentStatusRejected},
				{"sneha.g@example.com", models.EnrollmentStatusSelected},
				{"vikram.s@example.com", models.EnrollmentStatusSelected},
			},
		},
		{
			round: models.Round{Name: "Aptitude Test", Date: "2024-10-20", Time: "10:00", Mode: models.RoundModeOnline, Status: models.RoundStatusUpcoming},
			roster: []seedEntry{
				{"rahul.s@example.com", models.EnrollmentStatusPending},
				{"priya.p@example.com", models.EnrollmentStatusPending},
				{"sneha.g@example.com", models.EnrollmentStatusPending},
				{"vikram.s@example.com", models.EnrollmentStatusPending},
			},
		},
		{round: models.Round{Name: "Technical Interview", Date: "2024-10-25", Time: "11:00", Mode: models.RoundModeOffline, Status: models.RoundStatusUpcoming}},
		{round: models.Round{Name: "HR Interview", Date: "2024-10-30", Time: "14:00", Mode: models.RoundModeOffline, Status: models.RoundStatusUpcoming}},
	}
}
