// Command seed populates an empty database with a completed sample run and a
// handful of representative jobs, so the dashboard has data before the first
// real discovery run.
package main

import (
	"context"
	"log"
	"time"

	"jobradar/internal/config"
	"jobradar/internal/logging"
	"jobradar/internal/storage"
	"jobradar/pkg/models"
)

func main() {
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()
	logger := logging.GetGlobalLogger()

	if cfg.Database.URL == "" {
		logger.Error("DATABASE_URL is required for seeding", map[string]interface{}{})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := storage.NewPostgresStorage(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("Failed to connect to Postgres", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	defer store.Close()

	stats, err := store.GetStats(ctx)
	if err != nil {
		logger.Error("Failed to inspect database", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if stats.TotalJobs > 0 {
		logger.Info("Database already has data, skipping seed", map[string]interface{}{
			"total_jobs": stats.TotalJobs,
		})
		return
	}

	run, err := store.CreateScrapeRun(ctx, models.RunConfig{
		Sources:        []string{"indeed", "linkedin"},
		MaxJobs:        40,
		Locations:      []string{"India", "Remote"},
		TargetRoles:    []string{"APM", "Junior PM", "Assistant PM", "Entry-Level PM"},
		TimePeriodDays: 7,
	})
	if err != nil {
		logger.Error("Failed to create seed run", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	seeds := sampleJobs(run.ID)
	saved, err := store.CreateJobs(ctx, seeds)
	if err != nil {
		logger.Error("Failed to insert sample jobs", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	status := models.RunStatusCompleted
	completedAt := time.Now()
	jobsFound := len(saved)
	if _, err := store.UpdateScrapeRun(ctx, run.ID, models.RunUpdate{
		Status:      &status,
		CompletedAt: &completedAt,
		JobsFound:   &jobsFound,
	}); err != nil {
		logger.Error("Failed to finalize seed run", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	logger.Info("Seeded sample jobs", map[string]interface{}{
		"run_id": run.ID,
		"jobs":   len(saved),
	})
}

func sampleJobs(runID int) []models.JobSeed {
	job := func(title, company, location, source, url, posted, reason, salary, description string) models.JobSeed {
		return models.JobSeed{
			Title:           title,
			Company:         company,
			Location:        location,
			Source:          source,
			URL:             url,
			PostedDate:      models.OptionalString(posted),
			RelevanceReason: reason,
			RunID:           &runID,
			Salary:          models.OptionalString(salary),
			Description:     models.OptionalString(description),
		}
	}

	return []models.JobSeed{
		job("Associate Product Manager", "Flipkart", "Bangalore, Karnataka, India", "LinkedIn",
			"https://www.linkedin.com/jobs/view/apm-flipkart-example", "2 days ago",
			"APM role | India location | Found on LinkedIn", "INR 18-25 LPA",
			"Join Flipkart's product team as an Associate Product Manager. You'll work on consumer-facing features impacting millions of users across India. Ideal for candidates with 0-2 years of experience."),
		job("Junior Product Manager - Growth", "Razorpay", "Bangalore, India", "Indeed",
			"https://www.indeed.com/viewjob?jk=razorpay-jpm-example", "3 days ago",
			"Junior PM role | India location | Found on Indeed", "INR 15-22 LPA",
			"Razorpay is looking for a Junior Product Manager to drive growth initiatives in the payments ecosystem. You'll be responsible for analyzing user behavior and shipping features that improve merchant onboarding."),
		job("Associate Product Manager - Platform", "Swiggy", "Hyderabad, India", "LinkedIn",
			"https://www.linkedin.com/jobs/view/apm-swiggy-example", "1 day ago",
			"APM role | India location | Found on LinkedIn", "",
			"Swiggy's platform team seeks an APM to work on core infrastructure products. You'll partner with engineering to define and ship features that power the delivery experience."),
		job("Entry Level Product Manager", "Meesho", "Bangalore, Karnataka, India", "Indeed",
			"https://www.indeed.com/viewjob?jk=meesho-pm-example", "5 days ago",
			"Entry-Level PM role | India location | Found on Indeed", "INR 12-18 LPA",
			"Meesho is hiring an entry-level PM to join their social commerce team. Great opportunity for recent graduates interested in building products for Bharat."),
		job("Associate Product Manager - Remote", "Freshworks", "Remote (India)", "LinkedIn",
			"https://www.linkedin.com/jobs/view/apm-freshworks-example", "6 days ago",
			"APM role | Remote/global position | Found on LinkedIn", "INR 16-24 LPA",
			"Freshworks is looking for an APM to join our SaaS product suite. This is a remote-first position open to candidates across India. You'll work on CRM and ITSM products used by thousands of businesses."),
		job("Junior Product Manager - Payments", "PhonePe", "Pune, Maharashtra, India", "Indeed",
			"https://www.indeed.com/viewjob?jk=phonepe-jpm-example", "3 days ago",
			"Junior PM role | India location | Found on Indeed", "INR 14-20 LPA",
			"PhonePe is seeking a Junior PM for the payments vertical. You'll own features in the UPI ecosystem and help scale India's largest digital payments platform."),
		job("Assistant Product Manager", "Zoho", "Chennai, Tamil Nadu, India", "LinkedIn",
			"https://www.linkedin.com/jobs/view/assistant-pm-zoho-example", "2 days ago",
			"Assistant PM role | India location | Found on LinkedIn", "INR 10-15 LPA",
			"Zoho seeks an Assistant Product Manager to help shape our suite of productivity tools. Join a team that has built products used by over 80 million users globally."),
		job("Associate Product Manager - Wellfound", "CRED", "India / Remote", "Wellfound",
			"https://wellfound.com/jobs/apm-cred-example", "4 days ago",
			"APM role | Remote/global position | Found on Wellfound", "",
			"We're hiring APMs at CRED! If you're passionate about fintech and building delightful products, we want to hear from you."),
	}
}
