// Package mrz reads and writes the machine readable zone of ICAO 9303 travel
// documents: passports (TD3), identity cards (TD1, TD2) and visas (MRV-A,
// MRV-B).
//
// Parse works on clean MRZ text. Text straight from OCR goes through a
// Cleaner first, which also decides whether a frame's check digits are good
// enough to accept:
//
//	c := mrz.NewCleaner()
//	text, err := mrz.Clean(ocrText)
//	if err != nil {
//		return err
//	}
//	rec, err := c.ParseAndClean(text)
package mrz

// Parse detects the layout of text and reads a record from it. Check digit
// failures are reported through the record's validity flags, not as errors.
func Parse(text string, opts ...Option) (Record, error) {
	f, err := Detect(text)
	if err != nil {
		return nil, err
	}
	rec := f.NewRecord(opts...)
	if err := rec.FromMrz(text); err != nil {
		return nil, err
	}
	return rec, nil
}
