package migrations

import "github.com/Falling-dow/Jobs-NYC-Postings/common/database/schema"

// CreateJobPostingsTable stores postings exactly as published. Values are
// kept as strings and normalized when the trends service loads them.
var CreateJobPostingsTable = schema.Migration{
	Version:     1,
	Description: "Create job_postings table",
	Up: `
		CREATE TABLE IF NOT EXISTS job_postings (
			id UUID,
			posting_month String,
			salary_median String,
			job_count String,
			merged_job_category String,
			career_level String,
			any_programming_required String,
			residency_requirement String,
			title_classification String,
			loaded_at DateTime DEFAULT now()
		) ENGINE = MergeTree()
		ORDER BY (loaded_at, id)
		SETTINGS index_granularity = 8192
	`,
	Down: `DROP TABLE IF EXISTS job_postings`,
}
