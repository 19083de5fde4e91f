// Package domain models relief-resource stockpiles and disaster predictions.
//
// # Stock Catalog
//
// Stockpile locations live in a flat CSV file, one row per location. Column
// names are matched after normalization (trimmed, lower-cased, spaces and
// hyphens folded to underscores), so "Food and Water" and "food_and_water"
// name the same column:
//
//	name,latitude,longitude,food_and_water,clothing,shelter,medical_supplies
//	Delhi,28.70,77.10,500,300,120,80
//
// The label column is optional ("name", "id" or "location"); without it a
// record is identified by its 1-based row number. Every row must carry a
// latitude, a longitude and a non-negative integer for every resource type.
// Missing or invalid cells fail the whole load with a [MalformedDataError]
// naming the row and column. Columns the service does not understand are
// carried through unchanged when the catalog is written back.
//
// # Distance
//
// Distances are geodesic on the WGS-84 ellipsoid (Vincenty's inverse
// formula), in kilometers. See [DistanceKM].
//
// # Allocation
//
// An allocation decrements one record's quantities. Validation runs in three
// passes over the request (unknown resource, invalid amount, insufficient
// stock) and stops at the first violation. Nothing is applied unless the
// whole request is valid. See [Apply].
//
// # Predictions
//
// Flood and earthquake predictions come from a hosted scoring deployment
// behind the [Scorer] interface. A flood result of 1 means a flood is
// predicted. An earthquake result is a magnitude, rounded to two decimal
// places and classified with [CategorizeMagnitude]:
//
//	< 2.0   Micro      [6.0, 7.0)  Strong
//	[2, 4)  Minor      [7.0, 8.0)  Major
//	[4, 6)  Light      [8.0, 10)   Great
//	                   >= 10       Massive
package domain
