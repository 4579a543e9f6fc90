package ocr

// ResolveOverlaps reconciles cross-script detections of the same pixels.
// Two passes: first drop every Arabic token that overlaps a French token of
// equal or higher confidence, then drop every French token that overlaps a
// surviving Arabic token of strictly higher confidence. On an exact
// confidence tie the French token survives. Non-overlapping tokens are
// never dropped.
func ResolveOverlaps(arabic, french []Token) ([]Token, []Token) {
	keptArabic := make([]Token, 0, len(arabic))
	for _, ar := range arabic {
		drop := false
		for _, fr := range french {
			if ar.Box.Overlaps(fr.Box) && ar.Confidence <= fr.Confidence {
				drop = true
				break
			}
		}
		if !drop {
			keptArabic = append(keptArabic, ar)
		}
	}

	keptFrench := make([]Token, 0, len(french))
	for _, fr := range french {
		drop := false
		for _, ar := range keptArabic {
			if fr.Box.Overlaps(ar.Box) && fr.Confidence < ar.Confidence {
				drop = true
				break
			}
		}
		if !drop {
			keptFrench = append(keptFrench, fr)
		}
	}

	return keptArabic, keptFrench
}
