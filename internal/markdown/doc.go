// Package markdown turns markdown source into the read-only block and inline
// token tree consumed by the document compiler. Tokenizing is delegated to
// goldmark; this package only reshapes goldmark's AST into the small token
// vocabulary the compiler understands (heading, paragraph, list, table, code,
// space) and strips optional YAML front matter.
package markdown
