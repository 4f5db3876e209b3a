package models

// All lists every persisted model for migration.
var All = []interface{}{
	&Schedule{},
	&ScheduleRun{},
}
