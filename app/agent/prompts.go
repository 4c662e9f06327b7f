package agent

// NoContextSentinel is used instead of an empty context block when retrieval
// finds nothing, so the generation step can state that information is missing
// rather than receive a blank section.
const NoContextSentinel = "NO CONTEXT AVAILABLE"

// TruncationMarker is appended whenever the context block was cut to fit the
// character budget, so downstream consumers can detect lossy context.
const TruncationMarker = "\n...[context truncated]"

const systemPrompt = `You are a knowledge-base assistant.
Answer ONLY with information found in the provided context fragments.
If the context is empty or does not contain the information needed, say so explicitly and suggest which document could be added.
Be concise and give actionable steps or commands when they apply.
Never invent facts that are not present in the context.`

const userPromptTemplate = `User question:
%s

Retrieved context (relevant fragments):
%s

Instructions:
- Use strictly the information from the context.
- If the context is insufficient or ambiguous, say so.
- Give concrete commands or steps when applicable.`
