package llm

// DrawingTablePrompt asks for the parts list of a cross-section drawing as a JSON array.
const DrawingTablePrompt = `
This image contains a parts list / Bill of Materials (BOM) table from an engineering drawing.

Extract ALL rows from the table and return the data as a JSON array.
Each row should be an object with these keys:
- "ref": the part reference number
- "description": part description
- "qty": quantity (as a number, or "AS REQD" if applicable)
- "material": material specification

Return ONLY the raw JSON array with no explanation, no markdown, no code blocks.
Example format:
[
  {"ref": "1030", "description": "DIFFUSER (STAGE)", "qty": 1, "material": "GGG50 + COATING"},
  ...
]
`
