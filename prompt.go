package sourcebook

// PromptKind selects the generation task for BuildPrompt.
type PromptKind string

// Prompt kinds.
const (
	PromptQuestion PromptKind = "question"
	PromptOverview PromptKind = "overview"
	PromptWorkAid  PromptKind = "work_aid"
	PromptFAQ      PromptKind = "faq"
	PromptBriefing PromptKind = "briefing"
	PromptTimeline PromptKind = "timeline"
	PromptOutline  PromptKind = "outline"
)

// BuildPrompt assembles the provider prompt for a generation task. content
// carries the formatted source material; question is used only by
// PromptQuestion. Unknown kinds fall back to a bare generation instruction
// over the raw content.
func BuildPrompt(kind PromptKind, content, question string) string {
	switch kind {
	case PromptQuestion:
		return "You are a careful research assistant. Answer the question using only " +
			"the numbered sources below. If the sources do not contain the answer, say " +
			"so instead of guessing.\n\n" +
			"Cite your claims with bracketed source numbers, e.g. [1] or [2], and quote " +
			"short passages verbatim in double quotes when they directly support your " +
			"answer.\n\n" +
			content + "\n\n" +
			"Question: " + question

	case PromptOverview:
		return "Analyze the following document and respond with a single JSON object, " +
			"no surrounding text, using exactly these fields:\n" +
			"{\n" +
			"  \"summary\": \"2-3 paragraph summary of the document\",\n" +
			"  \"outline\": \"hierarchical outline of the document's structure\",\n" +
			"  \"keyPoints\": [\"the most important points, one per entry\"],\n" +
			"  \"qa\": [{\"question\": \"a question a reader might ask\", \"answer\": \"its answer from the document\"}],\n" +
			"  \"todo\": \"suggested follow-up actions, if any\"\n" +
			"}\n\n" +
			"Document:\n" + content

	case PromptWorkAid:
		return "Create a practical work aid from the following document. Structure " +
			"your response in plain text under exactly these lowercase headers, in " +
			"this order:\n\n" +
			WorkAidSummaryHeader + "\n" +
			WorkAidHighlightsHeader + "\n" +
			WorkAidChecklistHeader + "\n\n" +
			"Document:\n" + content

	case PromptFAQ:
		return "Write a frequently-asked-questions document for the following " +
			"material. Produce question and answer pairs covering what a new reader " +
			"would most want to know, answered only from the material.\n\n" + content

	case PromptBriefing:
		return "Write a briefing document for the following material: state the " +
			"purpose first, then the main findings, then open issues. Use only the " +
			"material provided.\n\n" + content

	case PromptTimeline:
		return "Construct a timeline of the events described in the following " +
			"material. List entries chronologically with dates where given, and note " +
			"when ordering is uncertain.\n\n" + content

	case PromptOutline:
		return "Produce a detailed hierarchical outline of the following material, " +
			"preserving its section structure and noting the key claims under each " +
			"heading.\n\n" + content
	}

	return "Generate content based on: " + content
}
