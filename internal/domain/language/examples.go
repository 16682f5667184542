package language

// Buggy snippets offered as ready-made inputs.
var examples = map[string]string{
	"javascript": `// Buggy JavaScript code with multiple issues
function calculateFactorial(n) {
    if (n = 1) {  // Assignment instead of comparison
        return 1;
    }
    return n * calculateFactorial(n - 1);  // No input validation
}

var result = calculateFactorial(-5);  // Using var, negative input
console.log(result);`,

	"python": `# Buggy Python code with performance and security issues
def fibonacci(n):
    if n <= 1:
        return n
    return fibonacci(n-1) + fibonacci(n-2)  # Exponential time complexity

user_input = input("Enter a number: ")
result = fibonacci(user_input)  # No input validation
print("Result: " + result)  # Type error`,

	"java": `// Buggy Java code with multiple issues
public class Calculator {
    public static void main(String[] args) {
        int result = divide(10, 0);  // Division by zero
        System.out.println(result);
    }

    public static int divide(int a, int b) {
        return a / b;  // No error handling
    }
}`,
}

// Example returns the built-in example snippet for a language id.
func (c *Catalog) Example(label string) (Language, string, bool) {
	l, ok := c.Lookup(label)
	if !ok {
		return Language{}, "", false
	}
	code, ok := examples[l.ID]
	if !ok {
		return Language{}, "", false
	}
	return l, code, true
}

// ExampleFilename is the suggested file name for an example, e.g. example.js.
func (c *Catalog) ExampleFilename(id string) string {
	return "example." + c.PrimaryExtension(id)
}
