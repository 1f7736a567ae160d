// Package examples holds the built-in sample cases offered by
// `advisor examples` and `advisor analyze --example`.
package examples

import (
	"fmt"
	"sort"
	"strings"
)

// Example is a piece of failing Python code together with its traceback.
type Example struct {
	Name        string
	Title       string
	Description string
	Code        string
	Traceback   string
}

var all = []Example{
	{
		Name:        "file-processing",
		Title:       "File Processing",
		Description: "reads a missing file and splits lines without validation",
		Code: `def process_user_data(filename):
    with open(filename, 'r') as file:
        data = file.read()
    
    users = data.split('\n')
    for user in users:
        name, age = user.split(',')
        print(f"Name: {name}, Age: {age}")

# This will cause multiple potential errors
process_user_data('users.txt')`,
		Traceback: `Traceback (most recent call last):
  File "example.py", line 9, in <module>
    process_user_data('users.txt')
  File "example.py", line 2, in process_user_data
    with open(filename, 'r') as file:
FileNotFoundError: [Errno 2] No such file or directory: 'users.txt'`,
	},
	{
		Name:        "api-data",
		Title:       "API Data Handling",
		Description: "decodes an HTTP response body that is not JSON",
		Code: `import requests

def get_user_data(user_id):
    response = requests.get(f'https://api.example.com/users/{user_id}')
    user_data = response.json()
    return user_data['data']['email']

# Multiple potential issues
email = get_user_data(123)
print(f"User email: {email}")`,
		Traceback: `Traceback (most recent call last):
  File "example.py", line 8, in <module>
    email = get_user_data(123)
  File "example.py", line 4, in get_user_data
    user_data = response.json()
  File "requests/models.py", line 900, in json
requests.exceptions.JSONDecodeError: Expecting value: line 1 column 1 (char 0)`,
	},
	{
		Name:        "database-ops",
		Title:       "Database Operations",
		Description: "mixes str and numeric prices in a calculation",
		Code: `def calculate_discount(price, discount_percent):
    discounted_price = price * (1 - discount_percent / 100)
    final_price = discounted_price + (discounted_price * 0.18)  # 18% tax
    return final_price

# Multiple calculation and type issues
prices = [100, 200, "300", 400]
for price in prices:
    final = calculate_discount(price, 20)
    print(f"Final price: {final}")`,
		Traceback: `Traceback (most recent call last):
  File "example.py", line 9, in <module>
    final = calculate_discount(price, 20)
  File "example.py", line 2, in calculate_discount
    discounted_price = price * (1 - discount_percent / 100)
TypeError: unsupported operand type(s) for *: 'str' and 'float'`,
	},
}

// All returns every example in display order.
func All() []Example {
	out := make([]Example, len(all))
	copy(out, all)
	return out
}

// Names returns the example names, sorted.
func Names() []string {
	names := make([]string, 0, len(all))
	for _, e := range all {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// Get looks up an example by name. Matching ignores case, and the numeric
// aliases "1", "2" and "3" select by position.
func Get(name string) (Example, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, e := range all {
		if key == e.Name || key == fmt.Sprint(i+1) {
			return e, nil
		}
	}
	return Example{}, fmt.Errorf("unknown example %q (available: %s)", name, strings.Join(Names(), ", "))
}
