package main

import (
	"database/sql"
	"fmt"
	"strings"
)

// printRows renders a *sql.Rows result as a plain-text table, per spec.md §6
// ("query <sql> ... writes table-shaped output").
func printRows(target string, rows *sql.Rows) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		fmt.Println(target, ":", err)
		return
	}

	fmt.Printf("-- %s --\n", target)
	fmt.Println(strings.Join(cols, "\t"))

	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			fmt.Println(target, ":", err)
			return
		}
		parts := make([]string, len(cols))
		for i, v := range values {
			parts[i] = fmt.Sprintf("%v", v)
		}
		fmt.Println(strings.Join(parts, "\t"))
	}
}
