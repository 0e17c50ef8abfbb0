// Package mdpublish publishes uploaded Markdown documents and archives so
// their image references resolve on a web server.
//
// # Quick Start
//
// Create a publisher and ingest an upload:
//
//	pub, err := mdpublish.NewPublisher(
//	    mdpublish.WithUploadsDir("uploads"),
//	    mdpublish.WithPublicDir("public"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	f, _ := os.Open("deck.zip")
//	defer f.Close()
//
//	result, err := pub.Ingest(ctx, mdpublish.Upload{Filename: "deck.zip", Body: f})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.DocumentPath, result.PublicBase)
//
// # Publishing Pipeline
//
// Ingest runs these stages for every upload:
//
//  1. Validate the filename and mint a unique upload id
//  2. Save the upload under the uploads directory
//  3. For archives: extract, build the asset mapping, copy assets to the public tree
//  4. Rewrite relative image references to public paths
//  5. Write the normalized document, audit references, render an optional preview
//
// # Rewriting Without I/O
//
// Rewrite and Canonicalize are pure functions usable on their own:
//
//	out := mdpublish.Rewrite("![a](img/a.png)", "/uploads/up-1/", "", nil)
//	// out == "![a](/uploads/up-1/img/a.png)"
//
// # Slide Generation
//
// Convert sends a published document to a Generator and writes the result:
//
//	res, err := pub.Convert(ctx, gen, "") // "" picks the latest upload
//
// A Publisher holds no mutable state after construction and is safe for
// concurrent use.
package mdpublish
