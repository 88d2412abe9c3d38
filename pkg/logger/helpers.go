package logger

// LogScanPage logs one fetched listing page
func LogScanPage(l Logger, creator string, page int, cursor int64, posts int, hasMore bool) {
	l.DebugWithFields("Listing page fetched", map[string]interface{}{
		"creator":  creator,
		"page":     page,
		"cursor":   cursor,
		"posts":    posts,
		"has_more": hasMore,
	})
}

// LogDownload logs the outcome of a single media download
func LogDownload(l Logger, creator, postID, mediaType string, err error) {
	fields := map[string]interface{}{
		"creator":    creator,
		"post_id":    postID,
		"media_type": mediaType,
	}
	if err != nil {
		l.WithError(err).WarnWithFields("Download skipped", fields)
		return
	}
	l.DebugWithFields("Download completed", fields)
}

// CreatorSummary is the per-creator tally reported at the end of a run
type CreatorSummary struct {
	Creator    string
	Inserted   int
	Duplicates int
	Failed     int
	Downloaded int
	Skipped    int
	Pictures   int
}

// LogCreatorSummary logs the tally for one creator
func LogCreatorSummary(l Logger, s CreatorSummary) {
	l.InfoWithFields("Creator finished", map[string]interface{}{
		"creator":    s.Creator,
		"inserted":   s.Inserted,
		"duplicates": s.Duplicates,
		"failed":     s.Failed,
		"downloaded": s.Downloaded,
		"skipped":    s.Skipped,
		"pictures":   s.Pictures,
	})
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string)                                   {}
func (nopLogger) Info(string)                                    {}
func (nopLogger) Warn(string)                                    {}
func (nopLogger) Error(string)                                   {}
func (n nopLogger) WithField(string, interface{}) Logger         { return n }
func (n nopLogger) WithFields(map[string]interface{}) Logger     { return n }
func (n nopLogger) WithError(error) Logger                       { return n }
func (nopLogger) DebugWithFields(string, map[string]interface{}) {}
func (nopLogger) InfoWithFields(string, map[string]interface{})  {}
func (nopLogger) WarnWithFields(string, map[string]interface{})  {}
func (nopLogger) ErrorWithFields(string, map[string]interface{}) {}
