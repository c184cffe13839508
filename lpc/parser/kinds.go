package parser

type NodeKind int

const (
	KindUnknown NodeKind = iota

	KindSourceFile
	KindSyntaxList
	KindToken
	KindIdentifier
	KindSkippedTokens

	// Literals
	KindIntLiteral
	KindFloatLiteral
	KindStringLiteral
	KindCharLiteral

	// Declarations
	KindModifierList
	KindVariableStatement
	KindVariableDeclaration
	KindFunctionDeclaration
	KindParameter
	KindInheritDeclaration
	KindStructDeclaration
	KindStructBase
	KindTypeLiteral
	KindPropertySignature

	// Statements
	KindBlock
	KindEmptyStatement
	KindExpressionStatement
	KindIfStatement
	KindDoStatement
	KindWhileStatement
	KindForStatement
	KindForEachStatement
	KindBreakStatement
	KindContinueStatement
	KindReturnStatement
	KindSwitchStatement
	KindCaseBlock
	KindCaseClause
	KindDefaultClause
	KindLabeledStatement

	// Preprocessor
	KindIncludeDirective
	KindDefineDirective
	KindMacroParameters
	KindMacroBody
	KindDirectiveBody
	KindUndefDirective
	KindIfDirective
	KindIfdefDirective
	KindElseDirective
	KindEndifDirective
	KindPragmaDirective
	KindLineDirective

	// Expressions
	KindBinaryExpression
	KindConditionalExpression
	KindPrefixUnaryExpression
	KindPostfixUnaryExpression
	KindParenthesizedExpression
	KindCallExpression
	KindSpreadElement
	KindPropertyAccessExpression
	KindElementAccessExpression
	KindRangeExpression
	KindFromEndExpression
	KindCastExpression
	KindTypeAssertionExpression
	KindArrayLiteral
	KindMappingLiteral
	KindMappingEntry
	KindStructLiteral
	KindStructMember
	KindClosureExpression
	KindLambdaExpression
	KindCatchExpression
	KindInlineClosure
	KindScopeAccess
	KindStringConcatenation

	// Types
	KindPrimitiveType
	KindStructType
	KindArrayType
	KindUnionType
	KindGroupedType
	KindLiteralType
	KindTypeReference
)

var nodeKindNames = map[NodeKind]string{
	KindUnknown:                  "Unknown",
	KindSourceFile:               "SourceFile",
	KindSyntaxList:               "SyntaxList",
	KindToken:                    "Token",
	KindIdentifier:               "Identifier",
	KindSkippedTokens:            "SkippedTokens",
	KindIntLiteral:               "IntLiteral",
	KindFloatLiteral:             "FloatLiteral",
	KindStringLiteral:            "StringLiteral",
	KindCharLiteral:              "CharLiteral",
	KindModifierList:             "ModifierList",
	KindVariableStatement:        "VariableStatement",
	KindVariableDeclaration:      "VariableDeclaration",
	KindFunctionDeclaration:      "FunctionDeclaration",
	KindParameter:                "Parameter",
	KindInheritDeclaration:       "InheritDeclaration",
	KindStructDeclaration:        "StructDeclaration",
	KindStructBase:               "StructBase",
	KindTypeLiteral:              "TypeLiteral",
	KindPropertySignature:        "PropertySignature",
	KindBlock:                    "Block",
	KindEmptyStatement:           "EmptyStatement",
	KindExpressionStatement:      "ExpressionStatement",
	KindIfStatement:              "IfStatement",
	KindDoStatement:              "DoStatement",
	KindWhileStatement:           "WhileStatement",
	KindForStatement:             "ForStatement",
	KindForEachStatement:         "ForEachStatement",
	KindBreakStatement:           "BreakStatement",
	KindContinueStatement:        "ContinueStatement",
	KindReturnStatement:          "ReturnStatement",
	KindSwitchStatement:          "SwitchStatement",
	KindCaseBlock:                "CaseBlock",
	KindCaseClause:               "CaseClause",
	KindDefaultClause:            "DefaultClause",
	KindLabeledStatement:         "LabeledStatement",
	KindIncludeDirective:         "IncludeDirective",
	KindDefineDirective:          "DefineDirective",
	KindMacroParameters:          "MacroParameters",
	KindMacroBody:                "MacroBody",
	KindDirectiveBody:            "DirectiveBody",
	KindUndefDirective:           "UndefDirective",
	KindIfDirective:              "IfDirective",
	KindIfdefDirective:           "IfdefDirective",
	KindElseDirective:            "ElseDirective",
	KindEndifDirective:           "EndifDirective",
	KindPragmaDirective:          "PragmaDirective",
	KindLineDirective:            "LineDirective",
	KindBinaryExpression:         "BinaryExpression",
	KindConditionalExpression:    "ConditionalExpression",
	KindPrefixUnaryExpression:    "PrefixUnaryExpression",
	KindPostfixUnaryExpression:   "PostfixUnaryExpression",
	KindParenthesizedExpression:  "ParenthesizedExpression",
	KindCallExpression:           "CallExpression",
	KindSpreadElement:            "SpreadElement",
	KindPropertyAccessExpression: "PropertyAccessExpression",
	KindElementAccessExpression:  "ElementAccessExpression",
	KindRangeExpression:          "RangeExpression",
	KindFromEndExpression:        "FromEndExpression",
	KindCastExpression:           "CastExpression",
	KindTypeAssertionExpression:  "TypeAssertionExpression",
	KindArrayLiteral:             "ArrayLiteral",
	KindMappingLiteral:           "MappingLiteral",
	KindMappingEntry:             "MappingEntry",
	KindStructLiteral:            "StructLiteral",
	KindStructMember:             "StructMember",
	KindClosureExpression:        "ClosureExpression",
	KindLambdaExpression:         "LambdaExpression",
	KindCatchExpression:          "CatchExpression",
	KindInlineClosure:            "InlineClosure",
	KindScopeAccess:              "ScopeAccess",
	KindStringConcatenation:      "StringConcatenation",
	KindPrimitiveType:            "PrimitiveType",
	KindStructType:               "StructType",
	KindArrayType:                "ArrayType",
	KindUnionType:                "UnionType",
	KindGroupedType:              "GroupedType",
	KindLiteralType:              "LiteralType",
	KindTypeReference:            "TypeReference",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsDirective reports whether k is a preprocessor directive node.
func (k NodeKind) IsDirective() bool {
	switch k {
	case KindIncludeDirective, KindDefineDirective, KindUndefDirective, KindIfDirective,
		KindIfdefDirective, KindElseDirective, KindEndifDirective, KindPragmaDirective, KindLineDirective:
		return true
	}
	return false
}

// IsDeclaration reports whether k declares a named program entity.
func (k NodeKind) IsDeclaration() bool {
	switch k {
	case KindVariableStatement, KindFunctionDeclaration, KindInheritDeclaration, KindStructDeclaration:
		return true
	}
	return false
}

// IsLeaf reports whether k is a token-bearing node.
func (k NodeKind) IsLeaf() bool {
	switch k {
	case KindToken, KindIdentifier, KindIntLiteral, KindFloatLiteral, KindStringLiteral, KindCharLiteral:
		return true
	}
	return false
}
