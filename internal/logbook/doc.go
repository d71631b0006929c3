// Package logbook persists every sail a fishing boat makes.
//
// The logbook is a boat.SailRecorder backed by the sail_log table in SQLite
// (see migrations/). Handing a SQLiteRepository to boat.FishingBoatOptions
// makes each Row() of the captain leave an entry:
//
//	repo := logbook.NewSQLiteRepository(db.DB)
//	adapter := boat.NewFishingBoatAdapter(boat.FishingBoatOptions{Name: "pequod", Recorder: repo})
//
// If the insert fails, Sail() returns the error and the captain sees it.
package logbook
