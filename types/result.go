package types

// Instruction is an outbound effect emitted by a successful state
// transition. Exactly one field is set.
type Instruction struct {
	TransferCurrency *TransferCurrency `json:"transfer_currency,omitempty"`
	TransferAssetOut *TransferAssetOut `json:"transfer_asset_out,omitempty"`
}

// TransferCurrency pays Coin to To.
type TransferCurrency struct {
	To   string `json:"to"`
	Coin Coin   `json:"coin"`
}

// TransferAssetOut releases Asset from escrow to To.
type TransferAssetOut struct {
	To    string   `json:"to"`
	Asset AssetRef `json:"asset"`
}

func PayCurrency(to string, coin Coin) Instruction {
	return Instruction{TransferCurrency: &TransferCurrency{To: to, Coin: coin}}
}

func ReleaseAsset(to string, asset AssetRef) Instruction {
	return Instruction{TransferAssetOut: &TransferAssetOut{To: to, Asset: asset}}
}

// Attribute is a key/value pair describing a result.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Result is returned by every successful state transition.
type Result struct {
	Action       string        `json:"action"`
	Attributes   []Attribute   `json:"attributes"`
	Instructions []Instruction `json:"instructions,omitempty"`
}

func NewResult(action string) *Result {
	return &Result{Action: action}
}

// AddAttribute appends an attribute and returns the result for chaining.
func (r *Result) AddAttribute(key, value string) *Result {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

// AddInstruction appends an outbound instruction.
func (r *Result) AddInstruction(in Instruction) *Result {
	r.Instructions = append(r.Instructions, in)
	return r
}

// Attribute returns the value stored under key.
func (r *Result) Attribute(key string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
