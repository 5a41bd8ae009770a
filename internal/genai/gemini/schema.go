package gemini

import "google.golang.org/genai"

// Schema 结构化输出的形状描述，原样透传给远端，由远端负责约束
type Schema = genai.Schema

// StringObject 构造所有字段均为必填字符串的对象 Schema，字段顺序即 PropertyOrdering
func StringObject(fields ...string) *Schema {
	props := make(map[string]*genai.Schema, len(fields))
	for _, f := range fields {
		props[f] = &genai.Schema{Type: genai.TypeString}
	}
	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       props,
		Required:         fields,
		PropertyOrdering: fields,
	}
}

// ArrayOf 构造数组 Schema
func ArrayOf(item *Schema) *Schema {
	return &genai.Schema{
		Type:  genai.TypeArray,
		Items: item,
	}
}
