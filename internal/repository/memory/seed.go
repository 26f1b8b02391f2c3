package memory

import (
	"time"

	"docgate/internal/model"
)

// SeedDocuments is the sample catalog loaded on startup for demos and local runs.
func SeedDocuments() []model.Document {
	at := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	return []model.Document{
		{
			ID: "1", Title: "Getting Started Guide",
			Description: "A comprehensive guide to get started with our system.",
			FileType:    "pdf", Size: "2.4 MB", Owner: "admin", CreatedAt: at("2025-03-01T14:30:00Z"),
			Tags: []string{"documentation", "tutorial"}, Status: model.StatusPublished, AccessLevel: model.AccessPublic,
		},
		{
			ID: "2", Title: "Annual Report 2024",
			Description: "Financial and operational report for the fiscal year 2024.",
			FileType:    "pdf", Size: "5.8 MB", Owner: "admin", CreatedAt: at("2025-02-15T10:15:00Z"),
			Tags: []string{"financial", "annual"}, Status: model.StatusPublished, AccessLevel: model.AccessRestricted,
		},
		{
			ID: "3", Title: "Employee Handbook",
			Description: "Official employee handbook containing company policies and procedures.",
			FileType:    "docx", Size: "3.2 MB", Owner: "admin", CreatedAt: at("2025-01-20T09:45:00Z"),
			Tags: []string{"policies", "employees"}, Status: model.StatusPublished, AccessLevel: model.AccessInternal,
		},
		{
			ID: "4", Title: "Project Proposal Template",
			Description: "Template for submitting new project proposals.",
			FileType:    "docx", Size: "1.5 MB", Owner: "john.doe", CreatedAt: at("2025-02-28T16:20:00Z"),
			Tags: []string{"template", "projects"}, Status: model.StatusPublished, AccessLevel: model.AccessPublic,
		},
		{
			ID: "5", Title: "Marketing Strategy",
			Description: "Strategic marketing plan for upcoming product launch.",
			FileType:    "pptx", Size: "4.1 MB", Owner: "jane.smith", CreatedAt: at("2025-03-05T11:10:00Z"),
			Tags: []string{"marketing", "strategy", "confidential"}, Status: model.StatusDraft, AccessLevel: model.AccessPrivate,
		},
		{
			ID: "6", Title: "Technical Specifications",
			Description: "Technical specifications for the new product line.",
			FileType:    "xlsx", Size: "2.8 MB", Owner: "john.doe", CreatedAt: at("2025-02-10T13:25:00Z"),
			Tags: []string{"technical", "specifications"}, Status: model.StatusPublished, AccessLevel: model.AccessRestricted,
		},
		{
			ID: "7", Title: "Customer Feedback Analysis",
			Description: "Analysis of customer feedback collected in Q1 2025.",
			FileType:    "xlsx", Size: "3.7 MB", Owner: "admin", CreatedAt: at("2025-03-12T15:40:00Z"),
			Tags: []string{"analysis", "customers", "feedback"}, Status: model.StatusPublished, AccessLevel: model.AccessInternal,
		},
		{
			ID: "8", Title: "Security Protocols",
			Description: "Updated security protocols and procedures.",
			FileType:    "pdf", Size: "1.9 MB", Owner: "jane.smith", CreatedAt: at("2025-01-30T09:00:00Z"),
			Tags: []string{"security", "protocols", "confidential"}, Status: model.StatusPublished, AccessLevel: model.AccessRestricted,
		},
	}
}
