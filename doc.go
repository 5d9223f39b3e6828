// Package langid identifies the natural language of text by matching byte
// n-grams against per-language frequency statistics.
//
// The statistics live in a packed multi-language trie that is stored in a
// database file together with the language catalog and a score table.
// Identification walks the trie from every start offset of the input and
// adds the scores of every matched n-gram, weighted by its length, to the
// languages it was seen in.
//
// # Quick Start
//
//	id, err := langid.Open("languages.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer id.Close()
//
//	for _, r := range id.IdentifyLanguages([]byte("the quick brown fox"), 3) {
//	    fmt.Println(r.Name(), r.Script, r.Score)
//	}
//
// Open falls back to the search directories (".", "~/.langid",
// "/usr/share/langid") and finally to an empty identifier, so a missing
// database disables identification instead of failing the caller.
//
// # Remote Databases
//
// Databases can be loaded from any blobstore.BlobStore:
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("langid/"))
//	id, err := langid.OpenBlob(ctx, store, "languages.db")
//
// # Scoring
//
// Identify returns the raw per-language scores; FinishIdentification
// applies the per-language adjustment, the cutoff ratio and the top-N
// limit:
//
//	scores := id.Identify(buf, langid.IgnoreWhitespace(true))
//	id.FinishIdentification(scores, 5, langid.DefaultCutoffRatio)
//
// # Building Databases
//
// The database package builds databases from sample text or raw n-gram
// counts:
//
//	db, _ := database.New(database.DefaultOptions())
//	en, _ := db.AddLanguage(catalog.LanguageID{Language: "en", Encoding: "utf8"}, uint64(len(text)))
//	_, _ = db.Train(en, text, database.DefaultTrainConfig())
//	m, _ := db.Unpacked()
//	m.Insert([]byte("the"), en, count, false)
//	m.ScaleByTrainingSize(db.Catalog().TrainingTotals())
//	_ = db.WriteFile("languages.db")
package langid
