package rte

const codeNoError = "0"

// codeSet maps the shared state machine's failure conditions onto one
// version's error-code vocabulary. SCORM 1.2 folds most ordering violations
// into 101/301; 2004 assigns each a distinct code.
type codeSet struct {
	alreadyInitialized       string
	initializeAfterTerminate string
	terminateBeforeInit      string
	terminateAfterTerminate  string
	getBeforeInit            string
	getAfterTerminate        string
	setBeforeInit            string
	setAfterTerminate        string
	commitBeforeInit         string
	commitAfterTerminate     string
	invalidArgument          string
}

func codesFor(v Version) codeSet {
	if v == V2004 {
		return codeSet{
			alreadyInitialized:       "103",
			initializeAfterTerminate: "104",
			terminateBeforeInit:      "112",
			terminateAfterTerminate:  "113",
			getBeforeInit:            "122",
			getAfterTerminate:        "123",
			setBeforeInit:            "132",
			setAfterTerminate:        "133",
			commitBeforeInit:         "142",
			commitAfterTerminate:     "143",
			invalidArgument:          "201",
		}
	}
	return codeSet{
		alreadyInitialized:       "101",
		initializeAfterTerminate: "101",
		terminateBeforeInit:      "301",
		terminateAfterTerminate:  "301",
		getBeforeInit:            "301",
		getAfterTerminate:        "301",
		setBeforeInit:            "301",
		setAfterTerminate:        "301",
		commitBeforeInit:         "301",
		commitAfterTerminate:     "301",
		invalidArgument:          "201",
	}
}

var scorm12Errors = map[string]string{
	"0":   "No error",
	"101": "General exception",
	"201": "Invalid argument error",
	"202": "Element cannot have children",
	"203": "Element not an array - cannot have count",
	"301": "Not initialized",
	"401": "Not implemented error",
	"402": "Invalid set value, element is a keyword",
	"403": "Element is read only",
	"404": "Element is write only",
	"405": "Incorrect data type",
}

var scorm2004Errors = map[string]string{
	"0":   "No Error",
	"101": "General Exception",
	"102": "General Initialization Failure",
	"103": "Already Initialized",
	"104": "Content Instance Terminated",
	"111": "General Termination Failure",
	"112": "Termination Before Initialization",
	"113": "Termination After Termination",
	"122": "Retrieve Data Before Initialization",
	"123": "Retrieve Data After Termination",
	"132": "Store Data Before Initialization",
	"133": "Store Data After Termination",
	"142": "Commit Before Initialization",
	"143": "Commit After Termination",
	"201": "General Argument Error",
	"301": "General Get Failure",
	"351": "General Set Failure",
	"391": "General Commit Failure",
	"401": "Undefined Data Model Element",
	"402": "Unimplemented Data Model Element",
	"403": "Data Model Element Value Not Initialized",
	"404": "Data Model Element Is Read Only",
	"405": "Data Model Element Is Write Only",
	"406": "Data Model Element Type Mismatch",
	"407": "Data Model Element Value Out Of Range",
	"408": "Data Model Dependency Not Established",
}

func errorStrings(v Version) map[string]string {
	if v == V2004 {
		return scorm2004Errors
	}
	return scorm12Errors
}
