package mcpserver

// DiagramFormat describes the text format accepted by import_diagram and
// produced by export_diagram.
const DiagramFormat = `# archview Diagram Text Format

One statement per line. Blank lines and lines starting with ` + "`#`" + ` are ignored.

## Statements

` + "```" + `
node <id> "<label>" <type>
edge <source> --> <target>[ : <label>][ [async]]
` + "```" + `

- ` + "`id`" + ` is a single token without whitespace and must be unique.
- ` + "`label`" + ` is a double-quoted string; escape quotes and backslashes with ` + "`\\`" + `.
- ` + "`type`" + ` is one of: service, database, external, frontend, gateway, worker.
- Edges reference node ids declared anywhere in the text. Edges to unknown
  nodes are dropped and reported.
- ` + "`[async]`" + ` marks an asynchronous relationship (queue, event, webhook).
- Edge labels are single-line.

Lines that do not match either statement are skipped and reported with their
line number; the rest of the diagram still loads. Imported nodes are placed on a
grid; node positions, metadata and health are not part of the text format.

## Example

` + "```" + `
# checkout
node web "Storefront" frontend
node api "API Gateway" gateway
node orders "Orders" service
node db "Orders DB" database
node bus "Event Bus" worker
edge web --> api : HTTPS
edge api --> orders : REST
edge orders --> db : SQL
edge orders --> bus : order.placed [async]
` + "```" + `
`
