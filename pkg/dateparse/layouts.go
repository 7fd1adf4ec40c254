package dateparse

// Special layouts handled without time.Parse.
const (
	LayoutUnixSeconds = "UNIX_SECONDS"
	LayoutUnixMillis  = "UNIX_MILLIS"
)

// Layout is a named Go time layout the parser accepts.
type Layout struct {
	Name   string // Human-readable name
	Layout string // Go time layout, or one of the UNIX_* specials
}

// DefaultLayouts returns the built-in layouts, most specific first.
// Tokens arrive upper-cased, so month and zone names match in any case.
func DefaultLayouts() []Layout {
	return []Layout{
		{Name: "RFC 3339 with nanoseconds", Layout: "2006-01-02T15:04:05.999999999Z07:00"},
		{Name: "RFC 3339", Layout: "2006-01-02T15:04:05Z07:00"},
		{Name: "ISO 8601 with milliseconds", Layout: "2006-01-02T15:04:05.000"},
		{Name: "ISO 8601", Layout: "2006-01-02T15:04:05"},
		{Name: "Log4j/Java logging", Layout: "2006-01-02 15:04:05.000"},
		{Name: "Python logging", Layout: "2006-01-02 15:04:05,000"},
		{Name: "Datetime with zone", Layout: "2006-01-02 15:04:05 MST"},
		{Name: "Datetime", Layout: "2006-01-02 15:04:05"},
		{Name: "Date", Layout: "2006-01-02"},
		{Name: "WebLogic with milliseconds", Layout: "Jan 2, 2006 3:04:05,000 PM MST"},
		{Name: "WebLogic", Layout: "Jan 2, 2006 3:04:05 PM MST"},
		{Name: "WebLogic without zone", Layout: "Jan 2, 2006 3:04:05 PM"},
		{Name: "Apache/NGINX CLF", Layout: "02/Jan/2006:15:04:05 -0700"},
		{Name: "Apache error log", Layout: "Mon Jan 02 15:04:05 2006"},
		{Name: "Apache error log with microseconds", Layout: "Mon Jan 02 15:04:05.000000 2006"},
		{Name: "Syslog with year", Layout: "Jan 2 2006 15:04:05"},
		{Name: "Syslog (BSD)", Layout: "Jan 2 15:04:05"},
		{Name: "RFC 1123", Layout: "Mon, 02 Jan 2006 15:04:05 MST"},
		{Name: "Spark/Hadoop short date", Layout: "06/01/02 15:04:05"},
		{Name: "US date format (MM/DD/YYYY)", Layout: "01/02/2006 15:04:05"},
		{Name: "Unix timestamp (milliseconds)", Layout: LayoutUnixMillis},
		{Name: "Unix timestamp (seconds)", Layout: LayoutUnixSeconds},
	}
}
