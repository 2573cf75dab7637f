package migrations

import "github.com/Falling-dow/Jobs-NYC-Postings/common/database/schema"

// All lists every migration in version order.
var All = []schema.Migration{
	CreateJobPostingsTable,
}
