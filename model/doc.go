// Package model defines the data shapes exchanged with a PocketBase server:
// records with dynamic fields, admins, collections, request logs, paginated
// list results and authentication payloads.
//
// Records keep their well-known fields in a struct and every other column
// in Data. Both views merge into one flat JSON object on the wire:
//
//	var rec model.Record
//	_ = json.Unmarshal(body, &rec)
//	title := rec.GetString("title")
//	author := rec.Expand["author"].Single
package model
