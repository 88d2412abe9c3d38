// Package scraper archives a creator's posts in three stages.
//
// The Walker pages through the signed listing API from cursor 0 and hands
// every video post to the Recorder, which inserts it as pending. Image
// sets only contribute picture URLs. The Fetcher then loads the creator's
// pending posts, downloads each video, uploads it to object storage and
// marks it done. A post is only marked done after a successful upload, so
// an interrupted run is resumed by running again.
//
// Scraper ties the stages together for a worklist of creators:
//
//	s := scraper.New(resolver, walker, recorder, repo, fetcher, scraper.Options{
//	    OutputDir:   "./downloads",
//	    Concurrency: 1,
//	    Images:      true,
//	}, log)
//
//	report, err := s.Run(ctx, creators, scraper.PhaseAll)
//
// A failing creator is recorded in the RunReport and does not stop the
// others. Run only returns an error when ctx is cancelled.
package scraper
