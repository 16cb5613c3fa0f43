// Package daterange extracts a publication date constraint from free-text queries.
//
// Extraction is pure: the same query and reference time always yield the
// same range. Rules are evaluated in a fixed order and the first match wins:
//
//  1. "last week" selects the past 7 days.
//  2. "last month" selects the past 30 days.
//  3. "last|past N days|weeks|months" selects N days, N*7 days or N*30 days.
//  4. A free-form date in the query ("2023-01-15", "3 weeks ago", "yesterday")
//     selects everything from that date until now.
//
// Queries matching none of the rules carry no constraint and Extract returns nil.
package daterange
