package parser

import (
	"fmt"
	"strconv"
	"strings"
)

type Category int

const (
	CategoryError Category = iota
	CategoryWarning
	CategorySuggestion
	CategoryMessage
)

func (c Category) String() string {
	switch c {
	case CategoryError:
		return "error"
	case CategoryWarning:
		return "warning"
	case CategorySuggestion:
		return "suggestion"
	}
	return "message"
}

// Message is an entry in the diagnostic catalog. The parser refers to
// messages by identity only; Text is a format with {0}, {1}... placeholders.
type Message struct {
	Code     int
	Category Category
	Key      string
	Text     string
}

func (m *Message) Format(args ...string) string {
	if len(args) == 0 {
		return m.Text
	}
	out := m.Text
	for i, arg := range args {
		out = strings.ReplaceAll(out, "{"+strconv.Itoa(i)+"}", arg)
	}
	return out
}

func (m *Message) String() string {
	return fmt.Sprintf("LPC%d", m.Code)
}

func msg(code int, category Category, key, text string) *Message {
	return &Message{Code: code, Category: category, Key: key, Text: text}
}

var (
	MsgIdentifierExpected             = msg(1003, CategoryError, "Identifier_expected", "Identifier expected.")
	MsgXExpected                      = msg(1005, CategoryError, "_0_expected", "'{0}' expected.")
	MsgMatchingBracket                = msg(1007, CategoryError, "The_parser_expected_to_find_a_1_to_match_the_0_token_here", "The parser expected to find a '{1}' to match the '{0}' token here.")
	MsgUnexpectedToken                = msg(1012, CategoryError, "Unexpected_token", "Unexpected token.")
	MsgTrailingCommaNotAllowed        = msg(1009, CategoryError, "Trailing_comma_not_allowed", "Trailing comma not allowed.")
	MsgVariableDeclarationExpected    = msg(1134, CategoryError, "Variable_declaration_expected", "Variable declaration expected.")
	MsgArgumentExpressionExpected     = msg(1135, CategoryError, "Argument_expression_expected", "Argument expression expected.")
	MsgPropertyAssignmentExpected     = msg(1136, CategoryError, "Property_assignment_expected", "Property assignment expected.")
	MsgExpressionOrCommaExpected      = msg(1137, CategoryError, "Expression_or_comma_expected", "Expression or comma expected.")
	MsgParameterDeclarationExpected   = msg(1138, CategoryError, "Parameter_declaration_expected", "Parameter declaration expected.")
	MsgExpressionExpected             = msg(1109, CategoryError, "Expression_expected", "Expression expected.")
	MsgTypeExpected                   = msg(1110, CategoryError, "Type_expected", "Type expected.")
	MsgDeclarationOrStatementExpected = msg(1128, CategoryError, "Declaration_or_statement_expected", "Declaration or statement expected.")
	MsgCaseOrDefaultExpected          = msg(1130, CategoryError, "case_or_default_expected", "'case' or 'default' expected.")
	MsgPropertyOrSignatureExpected    = msg(1131, CategoryError, "Property_or_signature_expected", "Property or signature expected.")
	MsgStringLiteralExpected          = msg(1141, CategoryError, "String_literal_expected", "String literal expected.")
	MsgMappingEntryExpected           = msg(1150, CategoryError, "Mapping_entry_expected", "Mapping entry expected.")
	MsgMacroParameterExpected         = msg(1151, CategoryError, "Macro_parameter_expected", "Macro parameter name expected.")
	MsgForeachBindingExpected         = msg(1152, CategoryError, "Foreach_binding_expected", "Loop variable expected.")
	MsgUnionMemberExpected            = msg(1153, CategoryError, "Union_member_expected", "Type or '|' expected.")
	MsgDeclarationNotAllowedHere      = msg(1154, CategoryError, "_0_declarations_are_not_supported", "'{0}' declarations are not supported; declare variables with a type such as 'mixed'.")
	MsgUnknownKeywordDidYouMean       = msg(1435, CategoryError, "Unknown_keyword_or_identifier_Did_you_mean_0", "Unknown keyword or identifier. Did you mean '{0}'?")
	MsgUnexpectedKeywordOrIdentifier  = msg(1434, CategoryError, "Unexpected_keyword_or_identifier", "Unexpected keyword or identifier.")
	MsgMacroAlreadyDefined            = msg(2300, CategoryError, "Macro_0_is_already_defined", "Macro '{0}' is already defined.")
	MsgUnknownDirective               = msg(2301, CategoryError, "Unknown_preprocessor_directive_0", "Unknown preprocessor directive '{0}'.")
	MsgUnexpectedTokensAfterDirective = msg(2302, CategoryError, "Unexpected_tokens_following_directive", "Unexpected tokens following preprocessor directive; expected a new line.")
	MsgIncludePathExpected            = msg(2303, CategoryError, "Include_path_expected", "Include path expected.")
	MsgEndifWithoutIf                 = msg(2304, CategoryError, "endif_without_if", "'{0}' without matching '#if'.")
	MsgEndifExpected                  = msg(2305, CategoryError, "endif_expected", "'#endif' expected.")
	MsgCannotResolveInclude           = msg(2306, CategoryWarning, "Cannot_resolve_include_0", "Cannot resolve include file '{0}'.")
	MsgUnterminatedStringLiteral      = msg(1002, CategoryError, "Unterminated_string_literal", "Unterminated string literal.")
	MsgUnterminatedCharacterLiteral   = msg(1010, CategoryError, "Unterminated_character_literal", "Unterminated character literal.")
	MsgAsteriskSlashExpected          = msg(1011, CategoryError, "Asterisk_Slash_expected", "'*/' expected.")
	MsgUnterminatedIncludePath        = msg(1013, CategoryError, "Unterminated_include_path", "'>' expected to close include path.")
	MsgInvalidCharacter               = msg(1127, CategoryError, "Invalid_character", "Invalid character.")
	MsgDigitExpected                  = msg(1124, CategoryError, "Digit_expected", "Digit expected.")
	MsgHexadecimalDigitExpected       = msg(1125, CategoryError, "Hexadecimal_digit_expected", "Hexadecimal digit expected.")
)
