package symbols

// ScopeID indexes a scope in the resolver arena. Index 0 is a sentinel
// and never refers to an allocated scope.
type ScopeID uint32

const NoScopeID ScopeID = 0

func (id ScopeID) IsValid() bool { return id != NoScopeID }

// SymbolID indexes a symbol in the resolver arena. Index 0 is a sentinel
// and never refers to an allocated symbol.
type SymbolID uint32

const NoSymbolID SymbolID = 0

func (id SymbolID) IsValid() bool { return id != NoSymbolID }
