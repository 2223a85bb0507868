// Package gantt parses scheduling-chart source text into tasks and directives.
//
// # Grammar
//
// The source is line oriented. Recognised lines are section headers
// ("section Build"), directives ("excludes weekends", "weekend friday",
// "displayMode compact", "todayMarker off", "title", "dateFormat",
// "axisFormat", "includes"), click lines ("click id href \"url\"") and task
// declarations:
//
//	Label :tags, id, start, end %% key: value | key: value
//
// Tags are done, active, crit, milestone and vert. The start is an ISO date
// or "after ref ref...". The end is an ISO date or a duration such as "3d"
// or "2w". The trailing "%%" part carries assignee, notes, link and progress
// metadata.
//
// Everything else (blank lines, "%%" comments, the "gantt" header, lines
// that do not parse) is ignored by the parser and never an error.
//
// # Line Indices
//
// Every [Task] records the zero-based index of its source line. That index
// is the join key used by package mutate to splice edits back into the text.
// Parsing is a pure function of the source string, so indices are only valid
// for the exact string that was parsed.
package gantt
