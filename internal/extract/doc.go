// Package extract reads infection events from the configured source.
//
// Every extractor returns an explicit Result instead of panicking or
// falling back on its own. Fallback to the synthetic dataset is a deliberate
// choice made by wrapping an extractor with WithFallback:
//
//	primary, err := extract.NewSQLExtractor(cfg.Source.SQL)
//	if err != nil {
//	    return err
//	}
//	ex := extract.WithFallback(primary, extract.NewDefaultSyntheticExtractor(), logger)
//	res := ex.Extract(ctx)
//	if res.Err != nil {
//	    return res.Err
//	}
//
// Available sources are SQL Server (SQLExtractor), a REST API
// (APIExtractor), CSV or XLSX exports (FileExtractor) and a deterministic
// demo dataset (SyntheticExtractor).
package extract
