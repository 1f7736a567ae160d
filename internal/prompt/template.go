package prompt

// SystemPrompt is sent as the system message on every completion request.
const SystemPrompt = "You are an expert Python developer. You MUST provide exactly three different solutions for every bug: 1) Simple fix, 2) Try-except handling, 3) Alternative approach. Always follow the exact format specified."

// Section headings the model is asked to reproduce, in order.
const (
	HeadingExplanation = "ERROR EXPLANATION:"
	HeadingSolution1   = "SOLUTION 1 (SIMPLE FIX):"
	HeadingSolution2   = "SOLUTION 2 (TRY-EXCEPT HANDLING):"
	HeadingSolution3   = "SOLUTION 3 (ALTERNATIVE APPROACH):"
)

const preamble = "IMPORTANT: You MUST provide EXACTLY THREE different solutions in the specified format below. Each solution must be genuinely different."

const formatDirective = "YOUR RESPONSE MUST FOLLOW THIS EXACT FORMAT - NO DEVIATIONS:"

// templateSections pairs each heading with the inline instruction shown under it.
var templateSections = []struct {
	heading     string
	instruction string
}{
	{
		heading:     HeadingExplanation,
		instruction: "[Provide a clear, one-paragraph explanation of what caused the error and why it happened]",
	},
	{
		heading:     HeadingSolution1,
		instruction: "[Provide the SIMPLEST possible fix that a beginner would understand. This should be a direct code correction with minimal changes.]",
	},
	{
		heading:     HeadingSolution2,
		instruction: "[Provide a ROBUST error handling solution using try-except blocks. Include specific exception types and proper error messages. This should be production-quality code.]",
	},
	{
		heading:     HeadingSolution3,
		instruction: "[Provide a COMPLETELY DIFFERENT approach to solve the same problem. This could involve refactoring, using different libraries, or implementing best practices. This should not be just another variation of the first two solutions.]",
	},
}

// Requirements are the numbered hard constraints appended after the template.
var Requirements = []string{
	"All three solutions MUST be different from each other",
	"Solution 1 must be the simplest direct fix",
	"Solution 2 must include proper try-except error handling",
	"Solution 3 must be a fundamentally different approach",
	"Each solution must include actual Python code examples",
	"Do NOT skip any of the three solutions",
}

const closing = "Now provide your analysis:"
