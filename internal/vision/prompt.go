package vision

// BuildDeliveryNotePrompt returns the extraction prompt for scanned CMR
// waybill pages.
func BuildDeliveryNotePrompt() string {
	return `You are a document data extraction assistant. Analyze the provided scan of a CMR waybill page and extract every handwritten or stamped delivery note on it.

IMPORTANT INSTRUCTIONS:
- A delivery note is one line recording a delivery: a date (datum), a quantity (aantal) and a unit code (eenheid, typically one letter followed by two digits such as E15 or M28).
- Transcribe every value EXACTLY as written, including commas, spaces and apparent mistakes. Do not normalize, translate or correct anything.
- Extract EVERY note on the page. Do not skip, merge or summarize lines.
- Every note must carry all three of "datum", "aantal" and "eenheid". If a value is missing or illegible, use an empty string for it and add a short English warning to the "warnings" array. Never guess: an uncertain unit code is an empty string with a warning, not your best reading.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation — just the raw JSON object.

The object must follow this schema:
{
  "notes": [
    {
      "datum": "",
      "aantal": "",
      "eenheid": "",
      "confidence": 0.0,
      "warnings": []
    }
  ]
}

"confidence" is your confidence in the transcription of that note, between 0.0 and 1.0. A page without any delivery notes returns an empty "notes" array.`
}
